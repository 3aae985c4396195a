package log

import (
	"github.com/kochabx/sealstore/log/writer"
)

// Config 日志配置，对应配置文件中的 log 段
type Config struct {
	Level  string `mapstructure:"level" json:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic disabled"`
	Output string `mapstructure:"output" json:"output" default:"console" validate:"oneof=console file multi"`
	Caller bool   `mapstructure:"caller" json:"caller"`
	// 默认开启内置脱敏规则
	DisableDesensitize bool       `mapstructure:"disable_desensitize" json:"disable_desensitize"`
	File               FileConfig `mapstructure:"file" json:"file"`
}

// FileConfig 日志文件配置
type FileConfig struct {
	Filepath         string            `mapstructure:"filepath" json:"filepath" default:"log"`
	Filename         string            `mapstructure:"filename" json:"filename" default:"sealstore"`
	FileExt          string            `mapstructure:"file_ext" json:"file_ext" default:"log"`
	RotateMode       writer.RotateMode `mapstructure:"rotate_mode" json:"rotate_mode"`
	RotatelogsConfig RotatelogsConfig  `mapstructure:"rotatelogs" json:"rotatelogs_config"`
	LumberjackConfig LumberjackConfig  `mapstructure:"lumberjack" json:"lumberjack_config"`
}

// RotatelogsConfig 按时间轮转配置
type RotatelogsConfig struct {
	MaxAge       int `mapstructure:"max_age" json:"max_age" default:"24"`
	RotationTime int `mapstructure:"rotation_time" json:"rotation_time" default:"1"`
}

// LumberjackConfig 按大小轮转配置
type LumberjackConfig struct {
	MaxSize    int  `mapstructure:"max_size" json:"max_size" default:"100"`
	MaxBackups int  `mapstructure:"max_backups" json:"max_backups" default:"5"`
	MaxAge     int  `mapstructure:"max_age" json:"max_age" default:"30"`
	Compress   bool `mapstructure:"compress" json:"compress"`
}

func (c *FileConfig) toWriterConfig() writer.RotateConfig {
	return writer.RotateConfig{
		Mode:              c.RotateMode,
		Filepath:          c.Filepath,
		Filename:          c.Filename,
		FileExt:           c.FileExt,
		MaxAgeHours:       c.RotatelogsConfig.MaxAge,
		RotationHours:     c.RotatelogsConfig.RotationTime,
		MaxSizeMB:         c.LumberjackConfig.MaxSize,
		MaxBackups:        c.LumberjackConfig.MaxBackups,
		MaxAgeDays:        c.LumberjackConfig.MaxAge,
		CompressRotations: c.LumberjackConfig.Compress,
	}
}
