package constants

const (
	Version        = `0.1.0`
	AppName        = `mdw`
	ConfigFile     = `cfg`
	ConfigFileType = `yaml`
	ConfigDir      = `/.md-workbench/`
	EnvPrefix      = `MDW`
)
