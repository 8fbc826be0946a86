package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var (
	ErrInvalidConfig = errors.New("invalid config")

	Default = Config{
		ChallengeWindowSeconds: 300,
		Network:                "mainnet",
	}

	validate = validator.New()
)

type Config struct {
	// Seconds during which a signed ownership challenge is accepted.
	ChallengeWindowSeconds uint64 `json:"challenge-window-seconds" validate:"gt=0"`

	// Bitcoin network whose addresses may register stars.
	Network string `json:"network" validate:"oneof=mainnet testnet3 regtest signet"`
}

func (c *Config) ChallengeWindow() time.Duration {
	return time.Duration(c.ChallengeWindowSeconds) * time.Second
}

func GetConfig(b []byte) (*Config, error) {
	ec := Default

	// An empty slice is invalid json, so handle that as a special case.
	if len(b) == 0 {
		return &ec, nil
	}

	if err := json.Unmarshal(b, &ec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := validate.Struct(ec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &ec, nil
}
