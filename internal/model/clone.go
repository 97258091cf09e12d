package model

// Clone returns a deep copy. Apply and hydrate mutate clones only; the
// caller's instance is never touched.
func (c *RobotConfig) Clone() *RobotConfig {
	if c == nil {
		return nil
	}
	out := &RobotConfig{Global: c.Global.clone()}
	out.Engines = make([]Engine, len(c.Engines))
	for i := range c.Engines {
		out.Engines[i] = c.Engines[i].clone()
	}
	return out
}

func (g GlobalSettings) clone() GlobalSettings {
	out := g
	out.Sessions = append([]SessionWindow(nil), g.Sessions...)
	return out
}

func (e Engine) clone() Engine {
	out := e
	out.Groups = make([]Group, len(e.Groups))
	for i := range e.Groups {
		out.Groups[i] = e.Groups[i].clone()
	}
	return out
}

func (g Group) clone() Group {
	out := g
	out.Logics = make([]Logic, len(g.Logics))
	for i := range g.Logics {
		out.Logics[i] = g.Logics[i].clone()
	}
	return out
}

func (l Logic) clone() Logic {
	out := l
	out.TrailSteps = append([]TrailStep(nil), l.TrailSteps...)
	out.PartialCloses = append([]PartialClose(nil), l.PartialCloses...)
	if l.DirectionalOverrides != nil {
		out.DirectionalOverrides = make(map[string]string, len(l.DirectionalOverrides))
		for k, v := range l.DirectionalOverrides {
			out.DirectionalOverrides[k] = v
		}
	}
	return out
}
