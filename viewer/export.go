package viewer

import (
	"time"

	"github.com/wudi/pdfview/engine"
	"github.com/wudi/pdfview/observability"
)

// ExportBytes serializes the current document. The native save buffer
// is freed before returning on every path; whether the copy out of it
// succeeded has no bearing on the release.
func (c *Controller) ExportBytes(flags engine.SaveFlags, version int) ([]byte, error) {
	start := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc == 0 {
		return nil, ErrNoDocument
	}
	buf, size, err := c.eng.SaveToMemory(c.doc, flags, version)
	if err != nil {
		if buf != 0 {
			c.eng.FreeSaveBuffer(buf)
		}
		return nil, &NativeError{Op: "export", Code: c.eng.LastError()}
	}
	defer c.eng.FreeSaveBuffer(buf)

	if size <= 0 {
		return nil, &NativeError{Op: "export", Code: c.eng.LastError()}
	}
	data := c.eng.SaveBufferBytes(buf, size)
	if data == nil {
		return nil, &NativeError{Op: "export", Code: c.eng.LastError()}
	}
	c.log.Info("document exported",
		observability.Int(observability.MetricExportBytes, len(data)),
		observability.Duration("duration", time.Since(start)))
	return data, nil
}
