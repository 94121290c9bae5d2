package cli

import (
	"fmt"
	"path/filepath"

	"mixterm/config"
	"mixterm/mirror"
	"mixterm/network"
	"mixterm/storage"
)

// openService loads the configuration, opens the local store next to it and
// builds the mirror service. The returned closer releases the store.
func openService() (*mirror.Service, func(), error) {
	cfg, cfgPath, err := config.LoadOrCreate()
	if err != nil {
		return nil, nil, fmt.Errorf("load configuration: %w", err)
	}

	dataDir := filepath.Dir(cfgPath)
	store, _, err := storage.Open(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}

	client := network.NewBlazeClient(network.Config{
		APIHost:     cfg.APIHost,
		BlazeHost:   cfg.BlazeHost,
		AccessToken: cfg.AccessToken,
	})

	closer := func() {
		_ = store.Close()
	}
	return mirror.NewService(store, client, cfg.AppID), closer, nil
}
