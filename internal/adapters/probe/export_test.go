package probe

// SetDefaultHomes replaces the fallback CUDA and ROCm install locations.
func (p *Probe) SetDefaultHomes(cuda, rocm string) {
	p.cudaHome = cuda
	p.rocmHome = rocm
}
