package vkrs

//CoreArena collects release functions for objects that share a lifetime and frees them in strict
//reverse creation order. The renderer keeps one for its globals, one per swapchain generation
//and one per model.
type CoreArena struct {
	name     string
	releases []func()
}

func NewCoreArena(name string) *CoreArena {
	return &CoreArena{name: name}
}

//Defer registers fn to run on the next Release. Register immediately after the create call succeeds.
func (a *CoreArena) Defer(fn func()) {
	a.releases = append(a.releases, fn)
}

//Release runs every registered function newest first and leaves the arena empty for reuse
func (a *CoreArena) Release() {
	for i := len(a.releases) - 1; i >= 0; i-- {
		a.releases[i]()
		a.releases[i] = nil
	}
	a.releases = a.releases[:0]
}

func (a *CoreArena) Len() int {
	return len(a.releases)
}

func (a *CoreArena) Name() string {
	return a.name
}
