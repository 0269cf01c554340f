package session

import (
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/ayusman/mudra/internal/detector"
)

// initModels constructs the three detectors concurrently and joins them
// before signaling ready. All three are required before frame processing
// begins even though only one is used per mode at a time; this keeps mode
// switches instant at the cost of a slower startup.
//
// If the session is stopped while construction is in flight, the results
// are discarded and session state is left untouched.
func (s *Session) initModels() {
	var face, hand, pose detector.Detector

	var g errgroup.Group
	g.Go(func() error {
		d, err := s.config.NewDetector(detector.ModelFace, detector.DefaultConfig(detector.ModelFace))
		if err != nil {
			return fmt.Errorf("face landmarker: %w", err)
		}
		face = d
		return nil
	})
	g.Go(func() error {
		d, err := s.config.NewDetector(detector.ModelHand, detector.DefaultConfig(detector.ModelHand))
		if err != nil {
			return fmt.Errorf("hand landmarker: %w", err)
		}
		hand = d
		return nil
	})
	g.Go(func() error {
		d, err := s.config.NewDetector(detector.ModelPose, detector.DefaultConfig(detector.ModelPose))
		if err != nil {
			return fmt.Errorf("pose landmarker: %w", err)
		}
		pose = d
		return nil
	})

	err := g.Wait()

	s.mu.Lock()
	if !s.alive {
		// Torn down mid-initialization: discard whatever was built.
		s.mu.Unlock()
		closeAll(face, hand, pose)
		return
	}

	if err != nil {
		// Any single failure fails the whole initialization; there is no
		// partial-ready state and no retry short of a new session.
		s.lastErr = fmt.Errorf("model initialization failed: %w", err)
		s.loading = false
		s.mu.Unlock()
		closeAll(face, hand, pose)
		log.Printf("session %s: %v", s.id, s.lastErr)
		return
	}

	s.face, s.hand, s.pose = face, hand, pose
	s.loading = false
	s.mu.Unlock()

	log.Printf("session %s: all models ready", s.id)
}

func closeAll(detectors ...detector.Detector) {
	for _, d := range detectors {
		if d != nil {
			d.Close()
		}
	}
}
