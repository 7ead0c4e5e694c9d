package main

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"geoattend/internal/domain/payroll"
)

// settings are CLI defaults applied when the input omits them.
type settings struct {
	PTKPStatus string            `mapstructure:"ptkp_status"`
	BPJS       payroll.BPJSRates `mapstructure:"bpjs"`
}

// loadSettings reads an optional config file and PAYROLLCALC_* variables
// over the statutory defaults.
func loadSettings(configFile string) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix("PAYROLLCALC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := payroll.DefaultBPJSRates()
	v.SetDefault("ptkp_status", payroll.DefaultPTKPStatus)
	v.SetDefault("bpjs.kesehatanemployee", defaults.KesehatanEmployee)
	v.SetDefault("bpjs.kesehatanemployer", defaults.KesehatanEmployer)
	v.SetDefault("bpjs.jhtemployee", defaults.JHTEmployee)
	v.SetDefault("bpjs.jhtemployer", defaults.JHTEmployer)
	v.SetDefault("bpjs.jpemployee", defaults.JPEmployee)
	v.SetDefault("bpjs.jpemployer", defaults.JPEmployer)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("failed to decode config: %w", err)
	}
	status, err := payroll.ParsePTKPStatus(s.PTKPStatus)
	if err != nil {
		return settings{}, err
	}
	s.PTKPStatus = status
	if err := s.BPJS.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}
