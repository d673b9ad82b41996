package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Options 监视器配置文件结构体
type Options struct {
	Enabled           bool     `yaml:"enabled"`
	LogToTable        bool     `yaml:"logToTable"`
	ExcludeComponents []string `yaml:"excludeComponents"`
	IncludeComponents []string `yaml:"includeComponents"`
	BatchLogs         bool     `yaml:"batchLogs"`
	BatchWindowMS     int      `yaml:"batchWindowMs"`
	Logger            string   `yaml:"logger"`

	Log struct {
		Level  string   `yaml:"level"`
		Writer []string `yaml:"writer"`
		File   string   `yaml:"file"`
	} `yaml:"log"`
}

// NewOptions 创建默认配置
func NewOptions() *Options {
	o := &Options{
		Enabled:           true,
		LogToTable:        false,
		ExcludeComponents: []string{},
		IncludeComponents: []string{},
		BatchLogs:         true,
		BatchWindowMS:     300,
		Logger:            "console",
	}
	o.Log.Level = "debug"
	o.Log.Writer = []string{"console"}
	o.Log.File = "flowvis.log"
	return o
}

// Load 从 YAML 文件加载配置，未出现的键保留默认值
func Load(path string) (*Options, error) {
	o := NewOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := yaml.Unmarshal(data, o); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	return o, nil
}
