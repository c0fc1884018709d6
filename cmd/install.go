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

	"github.com/valpere/pdftran/internal/extractor"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the poppler extraction tool",
	Long: `Check whether poppler's pdftotext is available and install it with the
system package manager if it is not. Requires sudo on Linux.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractor.NewPoppler().Installed() {
			fmt.Println("poppler is already installed.")
			return nil
		}

		fmt.Println("poppler not found, installing...")
		if err := extractor.Install(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("poppler installed successfully.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
