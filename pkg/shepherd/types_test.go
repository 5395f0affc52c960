package shepherd

import "testing"

func TestClusterTableDiff_EmptyBaseIsFullDiff(t *testing.T) {
	base := ClusterTable{}
	next := ClusterTable{"onOff": true, "level": uint64(10)}

	diff := base.diff(next)
	if len(diff) != 2 {
		t.Fatalf("expected a full diff of 2 keys, got %+v", diff)
	}
}

func TestClusterTableDiff_OnlyChangedKeysSurvive(t *testing.T) {
	base := ClusterTable{"onOff": true, "level": uint64(10)}
	next := ClusterTable{"onOff": true, "level": uint64(20)}

	diff := base.diff(next)
	if len(diff) != 1 {
		t.Fatalf("expected 1 changed key, got %+v", diff)
	}
	if diff["level"] != uint64(20) {
		t.Errorf("expected level=20 in diff, got %+v", diff["level"])
	}
}

func TestClusterTableDiff_NoChangesIsEmpty(t *testing.T) {
	base := ClusterTable{"onOff": true}
	next := ClusterTable{"onOff": true}

	diff := base.diff(next)
	if len(diff) != 0 {
		t.Fatalf("expected no diff, got %+v", diff)
	}
}

func TestDeviceAddRemoveEndpoint_KeepsEpListInSyncWithMap(t *testing.T) {
	d := newDevice("0x0001", 1, DeviceTypeRouter)
	d.addEndpoint(newEndpoint(1, 0x0104, 0x0000, nil, nil))
	d.addEndpoint(newEndpoint(2, 0x0104, 0x0000, nil, nil))

	if len(d.EpList) != len(d.Endpoints) {
		t.Fatalf("epList (%v) and Endpoints map (%d) diverged", d.EpList, len(d.Endpoints))
	}

	d.removeEndpoint(1)
	if len(d.EpList) != 1 || d.EpList[0] != 2 {
		t.Fatalf("expected epList [2] after removal, got %v", d.EpList)
	}
	if _, ok := d.Endpoints[1]; ok {
		t.Error("expected endpoint 1 to be gone from the map")
	}
}

func TestDeviceDump_MinimalOmitsIDAndEndpoints(t *testing.T) {
	d := newDevice("0x0001", 1, DeviceTypeRouter)
	d.RegistryID = 7
	d.addEndpoint(newEndpoint(1, 0x0104, 0x0000, nil, nil))

	full := d.dump(false)
	if full.RegistryID != 7 || full.Endpoints == nil {
		t.Fatalf("expected full dump to carry id and endpoints, got %+v", full)
	}

	minimal := d.dump(true)
	if minimal.RegistryID != 0 || minimal.Endpoints != nil || minimal.EpList != nil {
		t.Fatalf("expected minimal dump to omit id/endpoints/epList, got %+v", minimal)
	}
}
