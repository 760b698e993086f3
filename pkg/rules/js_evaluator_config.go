package rules

// jsConfig is shared by the goja engine and its stub so options compile with
// or without the js_eval tag.
type jsConfig struct {
	cache     ProgramCache
	registry  *FunctionRegistry
	constants map[string]float64
}

// JSEvaluatorOption configures the JS evaluator.
type JSEvaluatorOption func(*jsConfig)

// JSWithProgramCache shares compiled scripts. Scripts do not capture registry
// functions, so one cache can serve evaluators with different registries.
func JSWithProgramCache(cache ProgramCache) JSEvaluatorOption {
	return func(cfg *jsConfig) {
		cfg.cache = cache
	}
}

// JSWithFunctionRegistry binds a copy of registry into every run.
func JSWithFunctionRegistry(registry *FunctionRegistry) JSEvaluatorOption {
	return func(cfg *jsConfig) {
		if registry == nil {
			return
		}
		cfg.registry = registry.Clone()
	}
}

// JSWithConstants binds named numeric constants, e.g. {"mu0": 4e-7 * math.Pi}.
// Datum fields and context names shadow a constant of the same name.
func JSWithConstants(constants map[string]float64) JSEvaluatorOption {
	return func(cfg *jsConfig) {
		if len(constants) == 0 {
			return
		}
		if cfg.constants == nil {
			cfg.constants = make(map[string]float64, len(constants))
		}
		for name, value := range constants {
			if name == "" {
				continue
			}
			cfg.constants[name] = value
		}
	}
}

func applyJSEvaluatorOptions(opts []JSEvaluatorOption) jsConfig {
	cfg := jsConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
