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

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blastbeat.ini")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
bind = 0.0.0.0:8080
zmq = nats://127.0.0.1:4222
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.PingFreq != 3 {
		t.Fatalf("expected default ping_freq 3, got %d", cfg.PingFreq)
	}
	if cfg.SHTSize != 65536 {
		t.Fatalf("expected default sht_size 65536, got %d", cfg.SHTSize)
	}
	if cfg.MaxHops != 10 {
		t.Fatalf("expected default max_hops 10, got %d", cfg.MaxHops)
	}
}

func TestLoadRejectsMissingRequiredFields(t *testing.T) {
	path := writeConfig(t, `
ping_freq = 5
`)

	if _, err := Load(path); err == nil {
		t.Fatalf("expected validation error for missing bind/zmq")
	}
}

func TestLoadParsesVHostSection(t *testing.T) {
	path := writeConfig(t, `
bind = 0.0.0.0:8080
zmq = nats://127.0.0.1:4222

[vhost.example_com]
dealers = D1,D2
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.VHosts) != 1 {
		t.Fatalf("expected 1 vhost section, got %d", len(cfg.VHosts))
	}
	if cfg.VHosts[0].Name != "example_com" {
		t.Fatalf("expected section name propagated to Name, got %q", cfg.VHosts[0].Name)
	}
}
