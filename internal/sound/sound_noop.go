//go:build ci

package sound

const (
	CueTurn  = "turn"
	CueStart = "start"
	CueScore = "score"
)

type SoundManager struct{}

func NewSoundManager() *SoundManager {
	return &SoundManager{}
}

func (sm *SoundManager) Init() error {
	return nil
}

func (sm *SoundManager) Play(cue string) {
	// No-op
}

func (sm *SoundManager) Close() {
	// No-op
}
