// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"github.com/joho/godotenv"
	"gitlab.com/tozd/go/errors"
)

// 🌱 Environment returns the variables passed to svn: the env_file entries
// overridden by env
func (cfg *Config) Environment() (map[string]string, error) {
	out := map[string]string{}
	if cfg.EnvFile != "" {
		vars, err := godotenv.Read(cfg.Resolve(cfg.EnvFile))
		if err != nil {
			return nil, errors.Errorf("reading env_file %q: %w", cfg.EnvFile, err)
		}
		for k, v := range vars {
			out[k] = v
		}
	}
	for k, v := range cfg.Env {
		out[k] = v
	}
	return out, nil
}
