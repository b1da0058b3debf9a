package handshake

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// CountEAPOLKeys returns the number of EAPOL-Key frames in a pcap or
// pcapng capture.
func CountEAPOLKeys(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	src, err := openCapture(f)
	if err != nil {
		return 0, err
	}

	count := 0
	for {
		data, _, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("read %s: %w", path, err)
		}
		pkt := gopacket.NewPacket(data, src.LinkType(), gopacket.Lazy)
		if l, ok := pkt.Layer(layers.LayerTypeEAPOL).(*layers.EAPOL); ok && l.Type == layers.EAPOLTypeKey {
			count++
		}
	}
}

func openCapture(f *os.File) (packetSource, error) {
	if r, err := pcapgo.NewReader(f); err == nil {
		return r, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	r, err := pcapgo.NewNgReader(f, pcapgo.DefaultNgReaderOptions)
	if err != nil {
		return nil, fmt.Errorf("unrecognized capture format: %w", err)
	}
	return r, nil
}
