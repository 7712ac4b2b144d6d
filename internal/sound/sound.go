//go:build !ci

package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

// 提示音名称。对应 ~/.startups/sounds/<名称>.wav 或 .mp3，
// 文件缺失时静默跳过。
const (
	CueTurn  = "turn"  // 轮到自己
	CueStart = "start" // 对局开始
	CueScore = "score" // 进入结算
)

type SoundManager struct {
	buffers map[string]*beep.Buffer
	enabled bool
}

func NewSoundManager() *SoundManager {
	return &SoundManager{
		buffers: make(map[string]*beep.Buffer),
	}
}

func (sm *SoundManager) Init() error {
	sampleRate := beep.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	sm.enabled = true

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	soundDir := filepath.Join(homeDir, ".startups", "sounds")

	for _, cue := range []string{CueTurn, CueStart, CueScore} {
		for _, ext := range []string{".wav", ".mp3"} {
			if err := sm.loadCue(soundDir, cue, ext, sampleRate); err == nil {
				break
			}
		}
	}
	return nil
}

// loadCue 加载一个提示音文件到内存缓冲
func (sm *SoundManager) loadCue(soundDir, cue, ext string, sampleRate beep.SampleRate) error {
	path := filepath.Join(soundDir, cue+ext)
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format

	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(beep.Format{
		SampleRate:  sampleRate,
		NumChannels: 2,
		Precision:   4,
	})
	buffer.Append(resampled)

	sm.buffers[cue] = buffer
	return nil
}

func (sm *SoundManager) Play(cue string) {
	if !sm.enabled {
		return
	}

	buffer, ok := sm.buffers[cue]
	if !ok {
		return
	}

	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (sm *SoundManager) Close() {
	sm.enabled = false
}
