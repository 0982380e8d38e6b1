/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config loads and validates the gateway's INI configuration file:
// the bus/bind/uid/gid/ping/sht directives of §6, plus the per-acceptor and
// per-vhost sub-sections.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// VHost is one `[vhost.<name>]` section; Name is filled in from the section
// key after Unmarshal, since INI sub-sections carry their name as a map key
// rather than a field.
type VHost struct {
	Name           string
	Dealers        []string `mapstructure:"dealers" validate:"required,min=1"`
	Acceptors      []string `mapstructure:"acceptors"`
	SSLCertificate string   `mapstructure:"ssl_certificate"`
	SSLKey         string   `mapstructure:"ssl_key"`
}

// Acceptor is one `[acceptor.<name>]` section; see VHost.Name.
type Acceptor struct {
	Name           string
	Bind           string `mapstructure:"bind" validate:"required,hostname_port"`
	Shared         bool   `mapstructure:"shared"`
	SSLCertificate string `mapstructure:"ssl_certificate"`
	SSLKey         string `mapstructure:"ssl_key"`
}

// Config is the top-level gateway configuration, per spec.md §6's directive
// set plus the supplemented metrics_bind.
type Config struct {
	Bind           string `mapstructure:"bind" validate:"required,hostname_port"`
	Bus            string `mapstructure:"zmq" validate:"required,url"`
	UID            int    `mapstructure:"uid"`
	GID            int    `mapstructure:"gid"`
	PingFreq       int    `mapstructure:"ping_freq" validate:"min=1"`
	SHTSize        uint64 `mapstructure:"sht_size"`
	MaxHops        int    `mapstructure:"max_hops" validate:"min=1"`
	SSLCertificate string `mapstructure:"ssl_certificate"`
	SSLKey         string `mapstructure:"ssl_key"`
	MetricsBind    string `mapstructure:"metrics_bind"`

	// keyed by section name: [acceptor.main] / [vhost.example_com].
	AcceptorSections map[string]Acceptor `mapstructure:"acceptor"`
	VHostSections    map[string]VHost    `mapstructure:"vhost"`

	Acceptors []Acceptor `mapstructure:"-"`
	VHosts    []VHost    `mapstructure:"-"`
}

// Load reads and parses the INI file at path into a Config, applying the
// spec's defaults (ping_freq=3, sht_size=65536, max_hops=10) before
// validating.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("ini")

	v.SetDefault("ping_freq", 3)
	v.SetDefault("sht_size", uint64(65536))
	v.SetDefault("max_hops", 10)

	if err := v.ReadInConfig(); err != nil {
		return nil, ErrorReadFile.Errorf(err, path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, ErrorUnmarshal.Error(err)
	}

	for name, a := range cfg.AcceptorSections {
		a.Name = name
		cfg.Acceptors = append(cfg.Acceptors, a)
	}
	for name, vh := range cfg.VHostSections {
		vh.Name = name
		cfg.VHosts = append(cfg.VHosts, vh)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate applies struct-tag validation, matching the teacher's
// ServerConfig.Validate shape: collect every failing field into one error.
func (c *Config) Validate() error {
	val := validator.New()
	err := val.Struct(c)
	if err == nil {
		return nil
	}

	if _, ok := err.(*validator.InvalidValidationError); ok {
		return ErrorValidate.Error(err)
	}

	var fields []string
	for _, e := range err.(validator.ValidationErrors) {
		fields = append(fields, fmt.Sprintf("%s fails constraint %q", e.Field(), e.ActualTag()))
	}
	return ErrorValidate.Errorf(err, strings.Join(fields, "; "))
}
