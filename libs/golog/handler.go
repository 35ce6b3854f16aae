package golog

import "io"

type HandlerFunc func(e *Entry) error

func (h HandlerFunc) Log(e *Entry) error {
	return h(e)
}

// WriterHandler writes every entry to a single writer.
func WriterHandler(w io.Writer, fmtr Formatter) Handler {
	return &writerHandler{w: w, fmtr: fmtr}
}

type writerHandler struct {
	w    io.Writer
	fmtr Formatter
}

func (h *writerHandler) Log(e *Entry) error {
	_, err := h.w.Write(h.fmtr.Format(e))
	return err
}

// SplitHandler routes WARN and more severe entries to the err handler and
// everything else to out.
func SplitHandler(out, err Handler) Handler {
	return HandlerFunc(func(e *Entry) error {
		if e.Lvl <= WARN {
			return err.Log(e)
		}
		return out.Log(e)
	})
}
