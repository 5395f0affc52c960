package shepherd

import "testing"

func TestNewDescriptorValidator_AcceptsValidDescriptor(t *testing.T) {
	validate := NewDescriptorValidator(fakeValidator{})
	err := validate(AppDescriptor{
		ProfID:         0x0104,
		InClusterList:  []uint16{0x0000, 0x0006},
		OutClusterList: []uint16{0x0019},
	})
	if err != nil {
		t.Fatalf("expected a valid descriptor to pass, got %v", err)
	}
}

func TestNewDescriptorValidator_RejectsMissingProfID(t *testing.T) {
	validate := NewDescriptorValidator(fakeValidator{})
	err := validate(AppDescriptor{InClusterList: []uint16{0x0006}})
	if err == nil {
		t.Fatal("expected a missing profId to be rejected")
	}
}

func TestNewDescriptorValidator_RejectsClusterIDInBothLists(t *testing.T) {
	validate := NewDescriptorValidator(fakeValidator{})
	err := validate(AppDescriptor{
		ProfID:         0x0104,
		InClusterList:  []uint16{0x0006},
		OutClusterList: []uint16{0x0006},
	})
	if err != errClusterListCollision {
		t.Fatalf("expected errClusterListCollision, got %v", err)
	}
}
