package domain

// Settings are the project defaults read from the optional configuration file.
// Zero fields mean "not configured".
type Settings struct {
	Version          string
	BuildDir         string
	PythonLibrary    string
	PythonIncludeDir string
	BuildPython      *bool
	Defines          map[string]string
}

// Apply fills the unset fields of opts from the settings.
func (s Settings) Apply(opts BuildOptions) BuildOptions {
	if opts.Version == "" {
		opts.Version = s.Version
	}
	if opts.BuildDir == "" {
		opts.BuildDir = s.BuildDir
	}
	if opts.PythonLibrary == "" {
		opts.PythonLibrary = s.PythonLibrary
	}
	if opts.PythonIncludeDir == "" {
		opts.PythonIncludeDir = s.PythonIncludeDir
	}
	if !opts.BuildPythonSet && s.BuildPython != nil {
		opts.BuildPython = *s.BuildPython
	}
	return opts
}
