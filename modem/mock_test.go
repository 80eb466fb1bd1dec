package modem_test

import (
	"io"

	gomock "go.uber.org/mock/gomock"
	"i4.energy/across/tata/modem"
)

// MockSequenceBuilder scripts a module conversation on a MockTransport.
//
// The Loop reads from its own goroutine, so every scripted Read blocks until
// the Write it answers has happened, the way a real module only answers
// after receiving a command.
type MockSequenceBuilder struct {
	transport *modem.MockTransport
	reads     []any
	writes    []any
}

func NewMockSequence(transport *modem.MockTransport) *MockSequenceBuilder {
	return &MockSequenceBuilder{transport: transport}
}

// Exchange expects wire to be written and answers it with reply.
func (b *MockSequenceBuilder) Exchange(wire, reply string) *MockSequenceBuilder {
	written := make(chan struct{})
	b.writes = append(b.writes,
		b.transport.EXPECT().Write([]byte(wire)).DoAndReturn(func(p []byte) (int, error) {
			close(written)
			return len(p), nil
		}),
	)
	b.reads = append(b.reads,
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			<-written
			return copy(p, reply), nil
		}),
	)
	return b
}

// Silent expects wire to be written and never answers it.
func (b *MockSequenceBuilder) Silent(wire string) *MockSequenceBuilder {
	b.writes = append(b.writes,
		b.transport.EXPECT().Write([]byte(wire)).Return(len(wire), nil),
	)
	return b
}

// Unsolicited makes the module emit data without being asked.
func (b *MockSequenceBuilder) Unsolicited(data string) *MockSequenceBuilder {
	b.reads = append(b.reads,
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			return copy(p, data), nil
		}),
	)
	return b
}

// Hold ends the conversation: the next Read blocks until release is closed
// and then reports EOF.
func (b *MockSequenceBuilder) Hold(release <-chan struct{}) *MockSequenceBuilder {
	b.reads = append(b.reads,
		b.transport.EXPECT().Read(gomock.Any()).DoAndReturn(func(p []byte) (int, error) {
			<-release
			return 0, io.EOF
		}),
	)
	return b
}

// Apply orders the scripted reads and writes.
func (b *MockSequenceBuilder) Apply() {
	if len(b.reads) > 1 {
		gomock.InOrder(b.reads...)
	}
	if len(b.writes) > 1 {
		gomock.InOrder(b.writes...)
	}
}
