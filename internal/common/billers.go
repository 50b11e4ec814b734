/**
 * Copyright 2025-present Vanstra Capital Ltd.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"fmt"
	"os"
	"path/filepath"

	"vanstra-bank-go/internal/models"

	"gopkg.in/yaml.v2"
)

type billersConfig struct {
	Billers []models.Biller `yaml:"billers"`
}

// LoadBillers reads the biller directory from a yaml file. Relative paths are
// resolved against the working directory.
func LoadBillers(billersFile string) ([]models.Biller, error) {
	var billersPath string
	if filepath.IsAbs(billersFile) {
		billersPath = billersFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		billersPath = filepath.Join(wd, billersFile)
	}

	data, err := os.ReadFile(billersPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", billersFile, err)
	}

	var config billersConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", billersFile, err)
	}

	for i, biller := range config.Billers {
		if biller.Name == "" {
			return nil, fmt.Errorf("biller at index %d missing name", i)
		}
		if biller.Category == "" {
			return nil, fmt.Errorf("biller at index %d missing category", i)
		}
	}

	return config.Billers, nil
}
