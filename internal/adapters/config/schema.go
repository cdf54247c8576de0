package config

// DefaultFilename is the settings file looked up in the source directory.
const DefaultFilename = "torchbuild.yaml"

// File represents the structure of the torchbuild.yaml configuration file.
type File struct {
	Version          string            `yaml:"version"`
	BuildDir         string            `yaml:"build_dir"`
	PythonLibrary    string            `yaml:"python_library"`
	PythonIncludeDir string            `yaml:"python_include_dir"`
	BuildPython      *bool             `yaml:"build_python"`
	Defines          map[string]string `yaml:"defines"`
}
