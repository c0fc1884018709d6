/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valpere/pdftran/internal/creds"
)

var (
	cfgAPIKey      string
	cfgAccessToken string
	cfgProjectID   string
	cfgFilePath    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Store Google Cloud credentials",
	Long: `Save the API key, OAuth access token, and billing project ID used by
the translation service. Values are merged with any previously stored
configuration, so each flag can be updated independently.

The access token can be obtained with:
  gcloud auth print-access-token`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfgAPIKey == "" && cfgAccessToken == "" && cfgProjectID == "" {
			return fmt.Errorf("provide at least one of --api-key, --access-token, --project-id")
		}

		path := cfgFilePath
		if path == "" {
			var err error
			path, err = creds.DefaultPath()
			if err != nil {
				return err
			}
		}

		err := creds.Save(path, creds.Credentials{
			APIKey:      cfgAPIKey,
			AccessToken: cfgAccessToken,
			ProjectID:   cfgProjectID,
		})
		if err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		fmt.Printf("Configuration saved to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().StringVar(&cfgAPIKey, "api-key", "", "Google Cloud API key")
	configCmd.Flags().StringVar(&cfgAccessToken, "access-token", "", "OAuth access token")
	configCmd.Flags().StringVar(&cfgProjectID, "project-id", "", "Google Cloud project ID")
	configCmd.Flags().StringVar(&cfgFilePath, "config", "", "Credential file path (default: platform config dir)")
}
