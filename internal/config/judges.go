package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FaithfulnessJudgeName is the key the faithfulness evaluator looks up.
const FaithfulnessJudgeName = "faithfulness"

func LoadJudgesConfig() (*JudgesConfig, error) {
	path := os.Getenv("JUDGES_CONFIG_PATH")
	if path == "" {
		path = "configs/judges.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg JudgesConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *JudgesConfig) {
	for name, judge := range cfg.Judges {
		if judge.Name == "" {
			judge.Name = name
		}
		if judge.Model == nil {
			judge.Model = &ModelConfig{}
		}
		if judge.Model.MaxTokens == 0 {
			judge.Model.MaxTokens = 256
		}
		cfg.Judges[name] = judge
	}
}

func (c *JudgesConfig) Validate() error {
	for name, judge := range c.Judges {
		if judge.Prompt == "" {
			return fmt.Errorf("judge %s has an empty prompt", name)
		}
		if judge.Model.Temperature < 0 || judge.Model.Temperature > 1 {
			return fmt.Errorf("judge %s temperature %f out of range [0.0, 1.0]", name, judge.Model.Temperature)
		}
	}
	return nil
}
