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

	"github.com/yagoveloso/po-translator-llm/internal/translator"
)

// Default endpoints for the OpenAI-compatible aliases.
const (
	openRouterBaseURL = "https://openrouter.ai/api/v1"
	groqBaseURL       = "https://api.groq.com/openai/v1"
)

// buildProvider constructs the translation provider for a provider name.
// "openrouter" and "groq" are aliases of the OpenAI-compatible family with
// their endpoints pre-filled. Missing credentials are a fatal
// configuration error, caught here before any entry is processed.
func buildProvider(name, sourceLang string, cfg translator.Config) (translator.Provider, error) {
	switch name {
	case "google":
		return translator.NewGoogleProvider(cfg), nil

	case "openai", "openrouter", "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s requires an API key (--api-key or POTRANS_API_KEY)", name)
		}
		if cfg.BaseURL == "" {
			switch name {
			case "openrouter":
				cfg.BaseURL = openRouterBaseURL
			case "groq":
				cfg.BaseURL = groqBaseURL
			}
		}
		return translator.NewOpenAIProvider(cfg), nil

	case "ollama":
		return translator.NewOllamaProvider(cfg), nil

	case "mymemory":
		return translator.NewMyMemoryProvider(cfg, sourceLang), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
