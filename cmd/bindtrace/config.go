package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zqzqsb/bindtrace/bind"
)

// ruleFile 是 YAML 配置文件的结构
//
// 示例：
//
//	root: /data/fsroot
//	binds:
//	  - host: /data/app
//	    guest: /opt/app
//	storage:
//	  root: /data/media
//	  mount: /mnt/storage
type ruleFile struct {
	Root  string `yaml:"root"`
	Binds []struct {
		Host  string `yaml:"host"`
		Guest string `yaml:"guest"`
	} `yaml:"binds"`
	Storage *struct {
		Root  string `yaml:"root"`
		Mount string `yaml:"mount"`
	} `yaml:"storage"`
}

// loadConfig 读取 YAML 配置并把规则加进 builder
func loadConfig(path string, b *bind.Builder) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read config")
	}
	var cfg ruleFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return errors.Wrap(err, "parse config")
	}

	if cfg.Root != "" {
		b.WithRoot(cfg.Root)
	}
	for _, bd := range cfg.Binds {
		if bd.Host == "" || bd.Guest == "" {
			return errors.Errorf("bind entry needs both host and guest: %+v", bd)
		}
		b.WithBind(bd.Host, bd.Guest)
	}
	if cfg.Storage != nil {
		b.WithStorage(cfg.Storage.Root, cfg.Storage.Mount)
	}
	return nil
}
