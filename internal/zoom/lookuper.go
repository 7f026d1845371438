package zoom

//go:generate mockgen -source=lookuper.go -destination=mocks/mock_lookuper.go -package=mocks

import "context"

// Lookuper resolves a word in context against the definition service.
// *lookup.Client implements it.
type Lookuper interface {
	// Page returns markup that replaces the whole view.
	Page(ctx context.Context, word, passage string) (string, error)
	// Define returns the plain text definition of word.
	Define(ctx context.Context, word, passage string) (string, error)
}

// Job is a lookup the controller accepted and is waiting on. Run it off the
// event loop and hand the result back with Controller.Complete.
type Job struct {
	ID      uint64
	Mode    Mode
	Word    string
	Context string

	marker  int
	loading int
	gen     uint64
}

// Run performs the job's single request.
func (j *Job) Run(ctx context.Context, l Lookuper) (string, error) {
	if j.Mode == Navigate {
		return l.Page(ctx, j.Word, j.Context)
	}
	return l.Define(ctx, j.Word, j.Context)
}
