package config

// KeyMappings defines all configurable key bindings
type KeyMappings struct {
	// Deals
	AddDeal    string `yaml:"add_deal"`
	EditDeal   string `yaml:"edit_deal"`
	DeleteDeal string `yaml:"delete_deal"`
	ViewDeal   string `yaml:"view_deal"`

	// Keyboard moves (accessibility-equivalent drag path)
	GrabDeal   string `yaml:"grab_deal"`
	DropDeal   string `yaml:"drop_deal"`
	CancelGrab string `yaml:"cancel_grab"`

	// Navigation
	PrevStage    string `yaml:"prev_stage"`
	NextStage    string `yaml:"next_stage"`
	PrevDeal     string `yaml:"prev_deal"`
	NextDeal     string `yaml:"next_deal"`
	NextPipeline string `yaml:"next_pipeline"`
	PrevPipeline string `yaml:"prev_pipeline"`

	// Other
	Refresh  string `yaml:"refresh"`
	ShowHelp string `yaml:"show_help"`
	Quit     string `yaml:"quit"`
}

// DefaultKeyMappings returns the default key mappings
func DefaultKeyMappings() KeyMappings {
	return KeyMappings{
		AddDeal:    "a",
		EditDeal:   "e",
		DeleteDeal: "d",
		ViewDeal:   " ",

		GrabDeal:   "m",
		DropDeal:   "enter",
		CancelGrab: "esc",

		PrevStage:    "h",
		NextStage:    "l",
		PrevDeal:     "k",
		NextDeal:     "j",
		NextPipeline: "}",
		PrevPipeline: "{",

		Refresh:  "r",
		ShowHelp: "?",
		Quit:     "q",
	}
}

// applyDefaults fills empty bindings with the defaults so a partial config
// file still leaves every action reachable.
func (k *KeyMappings) applyDefaults() {
	def := DefaultKeyMappings()
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&k.AddDeal, def.AddDeal)
	fill(&k.EditDeal, def.EditDeal)
	fill(&k.DeleteDeal, def.DeleteDeal)
	fill(&k.ViewDeal, def.ViewDeal)
	fill(&k.GrabDeal, def.GrabDeal)
	fill(&k.DropDeal, def.DropDeal)
	fill(&k.CancelGrab, def.CancelGrab)
	fill(&k.PrevStage, def.PrevStage)
	fill(&k.NextStage, def.NextStage)
	fill(&k.PrevDeal, def.PrevDeal)
	fill(&k.NextDeal, def.NextDeal)
	fill(&k.NextPipeline, def.NextPipeline)
	fill(&k.PrevPipeline, def.PrevPipeline)
	fill(&k.Refresh, def.Refresh)
	fill(&k.ShowHelp, def.ShowHelp)
	fill(&k.Quit, def.Quit)
}
