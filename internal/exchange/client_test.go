package exchange

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/domainwire/rdns/internal/journal"
	"github.com/domainwire/rdns/internal/wire"
)

// mockJournal is a testify mock, the same shape as the teacher's
// internal/testutil.MockRepo used in cmd/apikey's tests.
type mockJournal struct {
	mock.Mock
}

func (m *mockJournal) Record(ctx context.Context, entry journal.QueryJournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// fakeUDPServer answers every query on a loopback UDP socket with respond's
// output, mirroring the teacher's TestNotifySlaves fixture
// (internal/dns/server/rfc1996_test.go) of standing up a real socket rather
// than mocking net.Conn.
func fakeUDPServer(t *testing.T, respond func(query []byte) []byte) (addr string, stop func()) {
	t.Helper()
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}

	done := make(chan struct{})
	go func() {
		buf := make([]byte, 2048)
		for {
			_ = pc.SetReadDeadline(time.Now().Add(2 * time.Second))
			n, raddr, err := pc.ReadFrom(buf)
			if err != nil {
				select {
				case <-done:
					return
				default:
					continue
				}
			}
			resp := respond(append([]byte(nil), buf[:n]...))
			if resp != nil {
				_, _ = pc.WriteTo(resp, raddr)
			}
		}
	}()

	return pc.LocalAddr().String(), func() {
		close(done)
		_ = pc.Close()
	}
}

func answerA(queryID uint16, qname string, ip [4]byte) []byte {
	buf := make([]byte, 512)
	w := wire.NewWriteCursor(buf)
	h := wire.Header{ID: queryID, QDCount: 1, ANCount: 1}
	h.Flags = h.Flags.SetResponse(true).SetRCode(wire.RCodeNoError)
	_ = h.Write(w)
	q, _ := wire.NewQuestion(qname, wire.TypeA, wire.ClassIN)
	_ = q.Write(w, nil)
	_ = wire.EncodeName(w, qname, nil)
	_ = w.U16BE(uint16(wire.TypeA))
	_ = w.U16BE(uint16(wire.ClassIN))
	_ = w.U32BE(300)
	_ = w.U16BE(4)
	_ = w.WriteBytes(ip[:])
	return w.Bytes()
}

func decodeQueryID(query []byte) uint16 {
	return uint16(query[0])<<8 | uint16(query[1])
}

func TestClientExchangeUDPSuccess(t *testing.T) {
	addr, stop := fakeUDPServer(t, func(query []byte) []byte {
		return answerA(decodeQueryID(query), "www.example.com.", [4]byte{192, 0, 2, 1})
	})
	defer stop()

	client := New(NewConfig(addr))
	q, err := wire.NewQuestion("www.example.com.", wire.TypeA, wire.ClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	rs, err := client.Exchange(context.Background(), q)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if len(rs.Records) != 1 {
		t.Fatalf("got %d records", len(rs.Records))
	}
	a := rs.Records[0].(*wire.RDataA)
	if a.String() != "192.0.2.1" {
		t.Errorf("got %s", a.String())
	}
}

func TestClientExchangeRecordsJournalEntry(t *testing.T) {
	addr, stop := fakeUDPServer(t, func(query []byte) []byte {
		return answerA(decodeQueryID(query), "www.example.com.", [4]byte{192, 0, 2, 1})
	})
	defer stop()

	mj := new(mockJournal)
	mj.On("Record", mock.Anything, mock.MatchedBy(func(e journal.QueryJournalEntry) bool {
		return e.QName == "www.example.com." && e.Protocol == "udp" && e.ID.String() != "00000000-0000-0000-0000-000000000000"
	})).Return(nil)

	client := New(NewConfig(addr, WithJournal(mj)))
	q, err := wire.NewQuestion("www.example.com.", wire.TypeA, wire.ClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	if _, err := client.Exchange(context.Background(), q); err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	mj.AssertExpectations(t)
}

func TestClientExchangeTimesOutWithNoResponder(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket: %v", err)
	}
	defer pc.Close()

	client := New(NewConfig(pc.LocalAddr().String(),
		WithQueryTimeout(100*time.Millisecond),
		WithLifetime(300*time.Millisecond),
		WithMaxRetries(0),
	))
	q, err := wire.NewQuestion("www.example.com.", wire.TypeA, wire.ClassIN)
	if err != nil {
		t.Fatalf("NewQuestion: %v", err)
	}
	_, err = client.Exchange(context.Background(), q)
	if err == nil {
		t.Fatal("expected a timeout error, got nil")
	}
}
