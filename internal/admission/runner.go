package admission

import (
	"context"
	"log"
	"path/filepath"
)

// Runner launches admissions as detached background tasks. Workers are
// fire and forget: the upload handler replies before the outcome is
// known, and process shutdown does not wait for in-flight admissions.
type Runner struct {
	Controller *Controller
}

// Launch starts one admission in the background. A panicking worker is
// logged and absorbed so it cannot take the process down.
func (r *Runner) Launch(req Request) {
	go func() {
		defer func() {
			if p := recover(); p != nil {
				log.Printf("admission: worker panic for %s: %v", filepath.Base(req.ImagePath), p)
			}
		}()
		r.Controller.Admit(context.Background(), req)
	}()
}
