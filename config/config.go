// Package config resolves quadglow's runtime settings from defaults,
// environment variables and an optional config file. Protocol constants
// (packet layout, timings, the device allow-list) are device facts and are
// deliberately not configurable here.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

var v *viper.Viper

func init() {
	v = viper.New()

	v.SetDefault("home", filepath.Join(xdg.Home, ".quadglow"))
	v.SetDefault("log.level", "info")
	v.SetDefault("mode", "solid")
	v.SetDefault("color", "red")
	v.SetDefault("brightness", 100)
	v.SetDefault("background", false)

	v.SetEnvPrefix("QUADGLOW")
	v.AutomaticEnv()
	v.BindEnv("home", "QUADGLOW_HOME")
	v.BindEnv("log.level", "QUADGLOW_LOG_LEVEL")
	v.BindEnv("mode", "QUADGLOW_MODE")
	v.BindEnv("color", "QUADGLOW_COLOR")
	v.BindEnv("brightness", "QUADGLOW_BRIGHTNESS")
	v.BindEnv("background", "QUADGLOW_BACKGROUND")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, path := range []string{".", filepath.Join(xdg.Home, ".quadglow"), "/etc/quadglow"} {
		v.AddConfigPath(path)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "warning: ignoring config file: %v\n", err)
		}
		// No config file is the common case; defaults apply.
	}
}

// GetHome returns the quadglow state directory (pid file, daemon log).
func GetHome() string {
	return v.GetString("home")
}

// GetLogLevel returns the configured logrus level name.
func GetLogLevel() string {
	return v.GetString("log.level")
}

// GetDefaultMode returns the lighting mode used when --mode is not given.
func GetDefaultMode() string {
	return v.GetString("mode")
}

// GetDefaultColor returns the color used when --color is not given.
func GetDefaultColor() string {
	return v.GetString("color")
}

// GetDefaultBrightness returns the brightness percentage default.
func GetDefaultBrightness() int {
	return v.GetInt("brightness")
}

// GetBackgroundDefault reports whether runs detach by default.
func GetBackgroundDefault() bool {
	return v.GetBool("background")
}

// GetPIDFile returns the pid file path used by background runs.
func GetPIDFile() string {
	return filepath.Join(GetHome(), "quadglow.pid")
}

// GetLogFile returns the log file background runs write to.
func GetLogFile() string {
	return filepath.Join(GetHome(), "quadglow.log")
}
