package smtpclient

import (
	"bufio"
	"net"
	"strings"
)

// fakeServer plays the server side of a scripted SMTP exchange over one
// half of a net.Pipe: read one line, write zero or more reply lines,
// repeat. Built once per test and driven from its own goroutine.
type fakeServer struct {
	conn net.Conn
	r    *bufio.Reader
}

func newFakeServer(conn net.Conn) *fakeServer {
	return &fakeServer{conn: conn, r: bufio.NewReader(conn)}
}

// readLine reads one CRLF-terminated command line, stripped of its
// terminator.
func (f *fakeServer) readLine() (string, error) {
	line, err := f.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// send writes one or more raw lines, each with CRLF appended.
func (f *fakeServer) send(lines ...string) {
	for _, l := range lines {
		f.conn.Write([]byte(l + "\r\n"))
	}
}

// expect reads one line and discards it; callers that care about the
// exact text read it themselves via readLine.
func (f *fakeServer) expect() string {
	line, _ := f.readLine()
	return line
}

func (f *fakeServer) close() {
	f.conn.Close()
}
