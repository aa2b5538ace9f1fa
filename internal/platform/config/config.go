package config

import (
	"fmt"
	"path/filepath"
)

type Config struct {
	DataPath     string
	DBPath       string
	SettingsPath string
}

func New(dataPath string) (Config, error) {
	if dataPath == "" {
		return Config{}, fmt.Errorf("data path is required")
	}
	return Config{
		DataPath:     dataPath,
		DBPath:       filepath.Join(dataPath, ".cgmlens", "cgmlens.db"),
		SettingsPath: filepath.Join(dataPath, ".cgmlens", "settings.yaml"),
	}, nil
}
