package checker

import (
	"structcheck/pkg/types"
)

// Scope is the lexical view the narrowing engine works against. Bind
// records a narrowed type for a visible name in the innermost frame; Exit
// discards the frame together with its narrowings.
type Scope interface {
	Enter()
	Exit()
	Bind(name string, typ types.Type)
	Lookup(name string) (types.Type, bool)
}

// SymbolInfo describes a declared value.
type SymbolInfo struct {
	Type    types.Type // Declared type
	IsConst bool
}

type frame struct {
	symbols    map[string]SymbolInfo
	narrowings map[string]types.Type
}

func newFrame() *frame {
	return &frame{
		symbols:    make(map[string]SymbolInfo),
		narrowings: make(map[string]types.Type),
	}
}

// Environment manages value symbols and their narrowings within nested
// scopes. An environment created with NewEnclosedEnvironment only reads its
// outer environment, so many of them can share one global environment
// concurrently.
type Environment struct {
	frames []*frame
	outer  *Environment
}

var _ Scope = (*Environment)(nil)

// NewEnvironment creates a new top-level environment.
func NewEnvironment() *Environment {
	return &Environment{frames: []*frame{newFrame()}}
}

// NewEnclosedEnvironment creates an environment nested within outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	return &Environment{frames: []*frame{newFrame()}, outer: outer}
}

func (e *Environment) current() *frame {
	return e.frames[len(e.frames)-1]
}

// Enter opens a new frame.
func (e *Environment) Enter() {
	e.frames = append(e.frames, newFrame())
}

// Exit closes the innermost frame. The base frame is never closed.
func (e *Environment) Exit() {
	if len(e.frames) > 1 {
		e.frames = e.frames[:len(e.frames)-1]
	}
}

// Define declares name in the innermost frame. It returns false if name is
// already declared there.
func (e *Environment) Define(name string, typ types.Type, isConst bool) bool {
	f := e.current()
	if _, exists := f.symbols[name]; exists {
		return false
	}
	f.symbols[name] = SymbolInfo{Type: typ, IsConst: isConst}
	return true
}

// Redefine replaces the declared type of name in the frame that declares it.
func (e *Environment) Redefine(name string, typ types.Type) bool {
	for env := e; env != nil; env = env.outer {
		for i := len(env.frames) - 1; i >= 0; i-- {
			if info, ok := env.frames[i].symbols[name]; ok {
				info.Type = typ
				env.frames[i].symbols[name] = info
				return true
			}
		}
	}
	return false
}

// Bind narrows name to typ in the innermost frame.
func (e *Environment) Bind(name string, typ types.Type) {
	e.current().narrowings[name] = typ
}

// Lookup returns the narrowed type of name, or its declared type when it is
// not narrowed.
func (e *Environment) Lookup(name string) (types.Type, bool) {
	for env := e; env != nil; env = env.outer {
		for i := len(env.frames) - 1; i >= 0; i-- {
			f := env.frames[i]
			if t, ok := f.narrowings[name]; ok {
				return t, true
			}
			if info, ok := f.symbols[name]; ok {
				return info.Type, true
			}
		}
	}
	return nil, false
}

// Symbol returns the declaration of name.
func (e *Environment) Symbol(name string) (SymbolInfo, bool) {
	for env := e; env != nil; env = env.outer {
		for i := len(env.frames) - 1; i >= 0; i-- {
			if info, ok := env.frames[i].symbols[name]; ok {
				return info, true
			}
		}
	}
	return SymbolInfo{}, false
}

// Narrowed returns the narrowings made in the innermost frame for names
// declared outside it.
func (e *Environment) Narrowed() map[string]types.Type {
	f := e.current()
	out := make(map[string]types.Type, len(f.narrowings))
	for name, t := range f.narrowings {
		if _, local := f.symbols[name]; !local {
			out[name] = t
		}
	}
	return out
}

// Names returns every symbol declared in the base frame.
func (e *Environment) Names() []string {
	var names []string
	for name := range e.frames[0].symbols {
		names = append(names, name)
	}
	return names
}
