package session

import (
	"fmt"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/overlay"
)

// runLoop is the perpetual frame loop. It is rescheduled once per tick and
// only terminates when the stop channel closes.
//
// Each tick:
//  1. Skip (without touching FPS accounting) while processing is disabled,
//     the camera is not ready, or the models are not ready.
//  2. Update the FPS window.
//  3. Clear the drawing surface fully.
//  4. Dispatch to the active mode: detect, classify, render, composite.
//  5. Catch and log any per-tick failure; the next tick still runs.
//
// Detection and drawing for frame N always finish before frame N+1 starts;
// there is exactly one goroutine invoking detectors.
//
// When the scene has been still for IdleTimeout the loop drops to the idle
// cadence and skips detection; motion restores the display cadence. Idle
// skips are excluded from FPS accounting like any other skipped tick.
func (s *Session) runLoop() {
	s.mu.RLock()
	stopCh := s.stopCh
	done := s.done
	s.mu.RUnlock()
	if stopCh == nil {
		return
	}
	defer close(done)

	activeInterval := time.Second / DisplayFPS
	idleInterval := time.Second / IdleFPS

	ticker := time.NewTicker(activeInterval)
	defer ticker.Stop()

	idle := false
	lastMotion := time.Now()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !s.IsEnabled() || !s.camera.IsOpen() || !s.Ready() {
				continue
			}

			frame, err := s.camera.ReadFrame()
			if err != nil {
				log.Printf("error reading frame: %v", err)
				continue
			}

			moved, _ := s.motion.Detect(frame)
			if moved {
				lastMotion = time.Now()
				if idle {
					idle = false
					ticker.Reset(activeInterval)
					log.Println("motion detected, resuming display cadence")
				}
			} else if !idle && time.Since(lastMotion) > IdleTimeout {
				idle = true
				ticker.Reset(idleInterval)
				log.Println("scene still, dropping to idle cadence")
			}

			if idle {
				frame.Close()
				continue
			}

			s.mu.Lock()
			s.fps.Tick()
			s.mu.Unlock()

			if err := s.processFrame(frame); err != nil {
				// Per-frame failure isolation: log and move on, the next
				// tick runs regardless.
				log.Printf("frame processing error: %v", err)
			}
			frame.Close()
		}
	}
}

// processFrame runs one detection/classification/render cycle for the
// active mode and publishes the composited frame and update.
func (s *Session) processFrame(frame *gocv.Mat) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during frame processing: %v", r)
		}
	}()

	mode := s.Mode()
	d := s.detectorFor(mode)
	if d == nil {
		return fmt.Errorf("no detector for mode %s", mode)
	}

	s.surface.Clear()

	bounds := s.surface.Bounds()
	timestampMs := time.Now().UnixMilli()

	result, err := d.DetectForVideo(frame, timestampMs)
	if err != nil {
		return fmt.Errorf("%s detection: %w", mode, err)
	}

	update := &Update{
		Mode:        mode,
		TimestampMs: timestampMs,
		Landmarks:   result,
	}

	switch mode {
	case ModeFaceFilter:
		f, ok := classify.Face(result, bounds.Dx(), bounds.Dy())
		if ok {
			update.Face = &f
		}
		overlay.DrawFace(s.surface, result, f, ok)
	case ModeHandGesture:
		g, ok := classify.Hand(result)
		if ok {
			update.Hand = &g
		}
		overlay.DrawHand(s.surface, result, g, ok)
	case ModeBodyPose:
		p, ok := classify.Body(result)
		if ok {
			update.Body = &p
		}
		overlay.DrawBody(s.surface, result, p, ok)
	}

	composited := frame.Clone()
	s.surface.CompositeOnto(&composited)

	s.mu.Lock()
	if s.hasSnapshot {
		s.snapshot.Close()
	}
	s.snapshot = composited
	s.hasSnapshot = true
	s.seq++
	update.Seq = s.seq
	update.FPS = s.fps.Value()
	s.latest = update
	s.mu.Unlock()

	return nil
}
