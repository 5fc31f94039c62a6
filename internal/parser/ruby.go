package parser

import (
	"github.com/jarredhawkins/linestruct/internal/pattern"
)

// Ruby header patterns
var (
	// class MyClass < BaseClass
	// class MyModule::MyClass
	rbClass = pattern.Named{Name: "class", Set: pattern.MustNew(`^\s*class\s+[A-Z]\w*(?:::[A-Z]\w*)*`)}

	// module MyModule
	rbModule = pattern.Named{Name: "module", Set: pattern.MustNew(`^\s*module\s+[A-Z]\w*(?:::[A-Z]\w*)*`)}

	// def my_method
	// def self.my_class_method
	rbMethod = pattern.Named{Name: "method", Set: pattern.MustNew(`^\s*def\s+(?:self\.)?\w+[?!=]?`)}

	// MY_CONSTANT = value, but not MY_CONSTANT == value
	rbConstant = pattern.Named{Name: "constant", Set: pattern.MustNew(`^\s*[A-Z][A-Z0-9_]*\s*=(?:[^=~]|$)`)}
)

// RegisterRuby adds the Ruby matchers. Closing "end" lines are not headers;
// they stay in the lines of the block they close
func RegisterRuby(r *Registry) {
	r.RegisterNamed(rbClass, rbModule, rbMethod, rbConstant)
}
