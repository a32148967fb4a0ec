package ruleset

// Builtin preset names.
const (
	PresetWhitespace    = "@Whitespace"
	PresetStandard      = "@Standard"
	PresetStandardRisky = "@Standard:risky"
)

// builtins lists the shipped presets. Later presets build on earlier ones.
var builtins = []struct {
	name string
	def  Fragment
}{
	{PresetWhitespace, Fragment{}.
		Set("line_ending", Enabled()).
		Set("indentation_type", Enabled()).
		Set("no_trailing_whitespace", Enabled()).
		Set("no_extra_blank_lines", Enabled()).
		Set("single_blank_line_at_eof", Enabled()),
	},
	{PresetStandard, Fragment{}.
		Set(PresetWhitespace, Enabled()).
		Set("lowercase_keywords", Enabled()).
		Set("no_empty_comment", Enabled()).
		Set("single_quote", Enabled()),
	},
	{PresetStandardRisky, Fragment{}.
		Set(PresetStandard, Enabled()).
		Set("strict_comparison", Enabled()),
	},
}

// NewDefaultResolver returns a resolver with the built-in presets
// registered.
func NewDefaultResolver() *Resolver {
	r := NewResolver()
	for _, b := range builtins {
		if err := r.Register(b.name, b.def); err != nil {
			panic(err)
		}
	}
	return r
}
