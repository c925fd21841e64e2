package neural

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"time"
)

// Serialized brain layout, little-endian, gzip-compressed as a whole:
//
//	magic        [4]byte  "RBRN"
//	version      uint16
//	learningRate float32
//	layers       uint16
//	sizes        [layers+1]uint32   inputs first
//	per layer    weights [out*in]float32 (row-major), bias [out]float32
const (
	codecMagic   = "RBRN"
	codecVersion = 1

	// maxLayerWidth bounds allocations when decoding untrusted blobs.
	maxLayerWidth = 1 << 16
)

var (
	ErrBadMagic = errors.New("neural: not a brain blob")
	ErrVersion  = errors.New("neural: unsupported brain version")
)

type codecHeader struct {
	Magic        [4]byte
	Version      uint16
	LearningRate float32
	Layers       uint16
}

// Save serialises the network.
func (b *Brain) Save() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := encodeNetwork(zw, b.net); err != nil {
		return nil, fmt.Errorf("encode brain: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress brain: %w", err)
	}
	return buf.Bytes(), nil
}

// Load replaces the network with one decoded from data. The topology of the
// blob wins; on error the brain is left unchanged.
func (b *Brain) Load(data []byte) error {
	net, err := decode(data)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.net = net
	return nil
}

// LoadBrain decodes a blob produced by Save into a new brain.
func LoadBrain(data []byte) (*Brain, error) {
	net, err := decode(data)
	if err != nil {
		return nil, err
	}
	return wrap(net, time.Now().UnixNano()), nil
}

// LoadBrainSeeded is LoadBrain with a fixed RNG seed for the genetic operators.
func LoadBrainSeeded(data []byte, rng *rand.Rand) (*Brain, error) {
	net, err := decode(data)
	if err != nil {
		return nil, err
	}
	return wrap(net, rng.Int63()), nil
}

func decode(data []byte) (*Network, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decompress brain: %w", ErrBadMagic)
	}
	defer zr.Close()

	net, err := decodeNetwork(zr)
	if err != nil {
		return nil, fmt.Errorf("decode brain: %w", err)
	}
	return net, nil
}

func encodeNetwork(w io.Writer, n *Network) error {
	hdr := codecHeader{
		Version:      codecVersion,
		LearningRate: n.LearningRate,
		Layers:       uint16(len(n.Layers)),
	}
	copy(hdr.Magic[:], codecMagic)
	if err := binary.Write(w, binary.LittleEndian, hdr); err != nil {
		return err
	}

	sizes := make([]uint32, 0, len(n.Layers)+1)
	if len(n.Layers) > 0 {
		sizes = append(sizes, uint32(n.Layers[0].In()))
	}
	for _, l := range n.Layers {
		sizes = append(sizes, uint32(l.Out()))
	}
	if err := binary.Write(w, binary.LittleEndian, sizes); err != nil {
		return err
	}

	for _, l := range n.Layers {
		if err := binary.Write(w, binary.LittleEndian, l.Weights.Data); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, l.Bias); err != nil {
			return err
		}
	}
	return nil
}

func decodeNetwork(r io.Reader) (*Network, error) {
	var hdr codecHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, ErrBadMagic
	}
	if string(hdr.Magic[:]) != codecMagic {
		return nil, ErrBadMagic
	}
	if hdr.Version != codecVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, hdr.Version)
	}
	if hdr.Layers == 0 {
		return nil, fmt.Errorf("%w: no layers", ErrTopology)
	}

	sizes := make([]uint32, int(hdr.Layers)+1)
	if err := binary.Read(r, binary.LittleEndian, sizes); err != nil {
		return nil, fmt.Errorf("read sizes: %w", err)
	}
	for i, s := range sizes {
		if s == 0 || s > maxLayerWidth {
			return nil, fmt.Errorf("%w: layer %d has %d units", ErrTopology, i, s)
		}
	}

	n := &Network{
		Layers:       make([]Layer, hdr.Layers),
		LearningRate: hdr.LearningRate,
	}
	for i := range n.Layers {
		l := newLayer(int(sizes[i]), int(sizes[i+1]))
		if err := binary.Read(r, binary.LittleEndian, l.Weights.Data); err != nil {
			return nil, fmt.Errorf("read layer %d weights: %w", i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, l.Bias); err != nil {
			return nil, fmt.Errorf("read layer %d bias: %w", i, err)
		}
		n.Layers[i] = l
	}
	return n, nil
}
