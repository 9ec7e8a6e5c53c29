package pipeline

// registerBuiltins installs the six concrete plugins of spec.md §4.8
// into a fresh Registry.
func registerBuiltins(r *Registry) {
	r.register("exclude-resources", CategoryFilter, ArgumentValue, newExcludeResources)
	r.register("exclude-files", CategoryFilter, ArgumentValue, newExcludeFiles)
	r.register("strip-java-debug", CategoryTransformer, ArgumentToggle, newStripJavaDebug)
	r.register("compact-cp", CategoryTransformer, ArgumentToggle, newCompactCP)
	r.register("sort-resources", CategorySorter, ArgumentValue, newSortResources)
	r.register("zip", CategoryCompressor, ArgumentToggle, newZipCompressor)
	r.register("default-compress", CategoryCompressor, ArgumentToggle, newZipCompressor)
}
