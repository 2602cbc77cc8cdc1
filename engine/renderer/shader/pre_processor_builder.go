package shader

// PreProcessorBuilderOption is a functional option for configuring a PreProcessor.
type PreProcessorBuilderOption func(*preProcessor)

// WithDefine substitutes value for every ${name} placeholder.
//
// Parameters:
//   - name: the placeholder name
//   - value: the replacement text
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithDefine(name, value string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.defines[name] = value
	}
}

// WithFlag sets a flag tested by @oxy:if blocks. Unset flags are false.
//
// Parameters:
//   - name: the flag name
//   - enabled: whether blocks guarded by the flag are kept
//
// Returns:
//   - PreProcessorBuilderOption: option function to apply
func WithFlag(name string, enabled bool) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.flags[name] = enabled
	}
}

// WithInclude registers an additional source under key, replacing any existing entry.
// A non-empty typeName lets @oxy:group declarations use the key as their type.
func WithInclude(key AnnotationArg, source, typeName string) PreProcessorBuilderOption {
	return func(p *preProcessor) {
		p.structRegistry[key] = registryEntry{Source: source, Type: typeName}
	}
}
