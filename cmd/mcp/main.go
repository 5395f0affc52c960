package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zigbee-shepherd/shepherd/pkg/af"
	"github.com/zigbee-shepherd/shepherd/pkg/db"
	shepherdmcp "github.com/zigbee-shepherd/shepherd/pkg/mcp"
	"github.com/zigbee-shepherd/shepherd/pkg/schema"
	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
	"github.com/zigbee-shepherd/shepherd/pkg/zcl"
	"github.com/zigbee-shepherd/shepherd/pkg/zigbee"
)

func main() {
	// Logging must go to stderr — stdout is the MCP transport.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	dbPath := flag.String("db", "", "Path to database file (default: ~/.config/shepherd/shepherd.db)")
	serialPort := flag.String("port", "/dev/cu.SLAB_USBtoUART", "Path to Zigbee serial port")
	baud := flag.Int("baud", 0, "Serial baud rate (default 115200)")
	channel := flag.Int("channel", 0, "Zigbee channel used when forming a new network (default 15)")
	panID := flag.Int("pan", 0, "PAN id used when forming a new network (default random)")
	flag.Parse()

	ctx := context.Background()

	database, err := db.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	log.Info().Str("path", database.Path()).Msg("Database opened")

	if err := database.Migrate(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	needsBootstrap, err := database.NeedsBootstrap(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to check bootstrap status")
	}
	if needsBootstrap {
		log.Info().Msg("First run detected, bootstrapping database...")
		if err := database.Bootstrap(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to bootstrap database")
		}
		log.Info().Msg("Database bootstrapped successfully")
	}

	radio, err := zigbee.NewController(*serialPort, zigbee.Config{
		Serial: zigbee.SerialConfig{Baud: *baud},
		Net:    zigbee.NetConfig{Channel: uint8(*channel), PanID: uint16(*panID)},
	})
	if err != nil {
		log.Fatal().Err(err).Str("port", *serialPort).Msg("Zigbee controller unavailable")
	}

	catalog := zcl.DefaultCatalog{}
	afLayer := af.New(radio, catalog)
	descValidator := shepherd.NewDescriptorValidator(schema.NewValidator())

	sh := shepherd.New(shepherd.Options{
		Radio:               radio,
		AF:                  afLayer,
		Catalog:             catalog,
		Store:               database.ShepherdStore(),
		Sink:                &shepherd.Sink{},
		DescriptorValidator: descValidator,
	})

	if err := sh.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start coordinator")
	}
	defer func() {
		if err := sh.Stop(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to stop coordinator")
		}
	}()

	mcpServer := shepherdmcp.NewServer(sh)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Fatal().Err(err).Msg("MCP server failed")
	}
}
