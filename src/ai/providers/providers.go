package providers

import (
	_ "github.com/stake-plus/sentinel/src/ai/anthropic"
	_ "github.com/stake-plus/sentinel/src/ai/compat"
	_ "github.com/stake-plus/sentinel/src/ai/openai"
)
