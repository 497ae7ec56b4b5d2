package cmd

// LogConfig holds the logging flags shared by all commands.
type LogConfig struct {
	Level     string `help:"Log level" enum:"trace,debug,info,warn,error" default:"info" env:"MIXREMAP_LOG_LEVEL"`
	File      string `help:"Log file path; console gets warnings only when set" type:"path" env:"MIXREMAP_LOG_FILE"`
	EntryFile string `help:"Write one line per rewritten archive entry to this file" type:"path" env:"MIXREMAP_LOG_ENTRY_FILE"`
}

// CLI is the root kong model.
type CLI struct {
	Config string    `help:"Configuration file (json, yaml or toml)" type:"path" env:"MIXREMAP_CONFIG"`
	Log    LogConfig `embed:"" prefix:"log."`

	Remap     Remap         `cmd:"" default:"withargs" help:"Remap a mod archive to intermediary names"`
	ConfigCmd ConfigCommand `cmd:"" name:"config" help:"Configuration helpers"`
}
