/*
Copyright © 2025 Yago Veloso

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

	"github.com/yagoveloso/po-translator-llm/internal/pofile"
)

var statsCmd = &cobra.Command{
	Use:   "stats <catalog.po>",
	Short: "Show translation statistics for a PO catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := pofile.ParseFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read catalog: %w", err)
		}

		total, translated, pending := catalog.Stats()
		if lang := catalog.HeaderField("Language"); lang != "" {
			fmt.Printf("Language:   %s\n", lang)
		}
		fmt.Printf("Entries:    %d\n", total)
		fmt.Printf("Translated: %d\n", translated)
		fmt.Printf("Pending:    %d\n", pending)
		if total > 0 {
			fmt.Printf("Progress:   %.1f%%\n", float64(translated)/float64(total)*100)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
