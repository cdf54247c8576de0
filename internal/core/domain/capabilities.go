package domain

// Capabilities holds the pre-resolved facts about optional native dependencies and the
// Python toolchain. They are produced by a CapabilityProbe and never change during a run.
type Capabilities struct {
	UseCUDA  bool
	CUDAHome string

	UseCuDNN        bool
	CuDNNLibrary    string
	CuDNNIncludeDir string

	UseNCCL        bool
	UseSystemNCCL  bool
	NCCLRootDir    string
	NCCLIncludeDir string
	NCCLSystemLib  string

	UseROCm bool

	UseDistributed bool
	UseGlooIBVerbs bool

	UseNNPACK  bool
	UseQNNPACK bool
	UseMKLDNN  bool

	UseNumPy        bool
	NumPyIncludeDir string

	PythonExecutable   string
	PythonIncludeDir   string
	PythonSitePackages string
}
