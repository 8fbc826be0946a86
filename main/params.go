package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/MetalBlockchain/metalgo/utils/logging"
	"github.com/MetalBlockchain/starchain/chain/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	versionKey    = "version"
	httpHostKey   = "http-host"
	httpPortKey   = "http-port"
	logLevelKey   = "log-level"
	configFileKey = "config-file"

	envPrefix = "starchain"
)

type params struct {
	version  bool
	httpHost string
	httpPort uint16
	logLevel logging.Level
	// Raw VM config, nil when no config file was given.
	vmConfig []byte
}

func (p *params) addr() string {
	return fmt.Sprintf("%s:%d", p.httpHost, p.httpPort)
}

func buildFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(constants.ServiceName, pflag.ContinueOnError)
	fs.Bool(versionKey, false, "If true, print version and quit")
	fs.String(httpHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint16(httpPortKey, 9650, "Port of the HTTP server")
	fs.String(logLevelKey, logging.Info.String(), "The log level")
	fs.String(configFileKey, "", "Path to the JSON chain config")
	return fs
}

// getViper returns the viper environment for the plugin binary.
func getViper(args []string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	fs := buildFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	return v, nil
}

func parseParams(args []string) (*params, error) {
	v, err := getViper(args)
	if err != nil {
		return nil, err
	}

	logLevel, err := logging.ToLevel(v.GetString(logLevelKey))
	if err != nil {
		return nil, err
	}

	p := &params{
		version:  v.GetBool(versionKey),
		httpHost: v.GetString(httpHostKey),
		httpPort: v.GetUint16(httpPortKey),
		logLevel: logLevel,
	}
	if path := v.GetString(configFileKey); path != "" {
		p.vmConfig, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("couldn't read %s: %w", configFileKey, err)
		}
	}
	return p, nil
}
