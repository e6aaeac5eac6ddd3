package main

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/roffe/ecudiag/pkg/channel"
)

type Config struct {
	Adapter      string  `toml:"adapter"`
	Port         string  `toml:"port"`
	PortBaudrate int     `toml:"port_baudrate"`
	CANRate      float64 `toml:"can_rate"`
	TxID         uint32  `toml:"tx_id"`
	RxID         uint32  `toml:"rx_id"`

	BlockSize  uint8 `toml:"block_size"`
	STMin      uint8 `toml:"st_min"`
	PadFrame   bool  `toml:"pad_frame"`
	PadByte    uint8 `toml:"pad_byte"`
	ExtendedID bool  `toml:"extended_id"`
}

func defaultConfig() Config {
	iso := channel.DefaultIsoTPSettings()
	return Config{
		Adapter:      "sim",
		CANRate:      500,
		TxID:         0x7E0,
		RxID:         0x7E8,
		BlockSize:    iso.BlockSize,
		STMin:        iso.STMin,
		PadFrame:     iso.PadFrame,
		PadByte:      iso.PadByte,
		ExtendedID:   iso.ExtendedID,
		PortBaudrate: 115200,
	}
}

func LoadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if cfg.Adapter == "" {
		return fmt.Errorf("adapter must be set")
	}
	if cfg.CANRate <= 0 {
		return fmt.Errorf("can_rate must be positive, got %v", cfg.CANRate)
	}
	if cfg.TxID == cfg.RxID {
		return fmt.Errorf("tx_id and rx_id must differ, both are 0x%X", cfg.TxID)
	}
	return nil
}

func (cfg Config) isoTP() channel.IsoTPSettings {
	return channel.IsoTPSettings{
		BlockSize:  cfg.BlockSize,
		STMin:      cfg.STMin,
		PadFrame:   cfg.PadFrame,
		PadByte:    cfg.PadByte,
		CANSpeed:   uint32(cfg.CANRate * 1000),
		ExtendedID: cfg.ExtendedID,
	}
}
