package config

// JudgesConfig is the YAML-backed configuration for every LLM-judged
// metric. Only faithfulness ships today; the map form keeps the file
// shape open for more judges.
type JudgesConfig struct {
	Judges map[string]JudgeConfiguration `yaml:"judges"`
}

// JudgeConfiguration describes one judge: its prompt template and the
// model parameters used to run it.
type JudgeConfiguration struct {
	Name        string       `yaml:"name"`
	Enabled     bool         `yaml:"enabled"`
	Description string       `yaml:"description"`
	Prompt      string       `yaml:"prompt"`
	Model       *ModelConfig `yaml:"model"`
}

// ModelConfig holds per-judge model invocation parameters.
type ModelConfig struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}
