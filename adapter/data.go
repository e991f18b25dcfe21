package adapter

import (
	"sync"

	hamlib "github.com/ftl/rigproxy/pkg/client"

	"github.com/ftl/adatadapter/caps"
)

func newRigData(rig Rig) *rigData {
	return &rigData{rig: rig}
}

// rigData serializes the access of all client connections to the rig.
type rigData struct {
	mu  sync.Mutex
	rig Rig
}

func (r *rigData) Capabilities() *caps.Capabilities {
	return r.rig.Capabilities()
}

func (r *rigData) Frequency() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.Frequency()
}

func (r *rigData) SetFrequency(hz float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.SetFrequency(hz)
}

func (r *rigData) Mode() (hamlib.Mode, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.Mode()
}

func (r *rigData) SetMode(mode hamlib.Mode, width int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.SetMode(mode, width)
}

func (r *rigData) VFO() (hamlib.VFO, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.VFO()
}

func (r *rigData) SetVFO(vfo hamlib.VFO) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.SetVFO(vfo)
}

func (r *rigData) PTT() (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.PTT()
}

func (r *rigData) SetPTT(on bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.SetPTT(on)
}

func (r *rigData) Info() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rig.Info()
}
