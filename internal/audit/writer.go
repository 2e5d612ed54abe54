package audit

import (
	"bytes"
	"net/http"
)

// bufferedWriter holds the handler's status and body until the response row
// is persisted. Headers go straight to the underlying writer's map.
type bufferedWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newBufferedWriter(w http.ResponseWriter) *bufferedWriter {
	return &bufferedWriter{ResponseWriter: w, status: http.StatusOK}
}

func (bw *bufferedWriter) WriteHeader(code int) {
	if bw.wroteHeader {
		return
	}
	bw.status = code
	bw.wroteHeader = true
}

func (bw *bufferedWriter) Write(p []byte) (int, error) {
	bw.wroteHeader = true
	return bw.body.Write(p)
}

// Status returns the code the handler chose, 200 when it never said.
func (bw *bufferedWriter) Status() int {
	return bw.status
}

func (bw *bufferedWriter) Bytes() []byte {
	return bw.body.Bytes()
}

// flush sends the buffered response to the client.
func (bw *bufferedWriter) flush() error {
	bw.ResponseWriter.WriteHeader(bw.status)
	if bw.body.Len() == 0 {
		return nil
	}
	_, err := bw.ResponseWriter.Write(bw.body.Bytes())
	return err
}
