package eeprom

import (
	"bytes"
	"io"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/eeprom/bus/simbus"
)

var _ = Describe("io adapters", func() {
	var env *simEnv

	BeforeEach(func() {
		env = newSimEnv(simbus.DefaultBufferSize, 5*time.Millisecond)
	})

	It("should copy a section of the device", func() {
		data := pattern(64, 2)
		_, err := env.ctrl.Write(200, data)
		Expect(err).NotTo(HaveOccurred())

		var out bytes.Buffer
		n, err := io.Copy(&out, io.NewSectionReader(env.ctrl, 200, 64))

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(int64(64)))
		Expect(out.Bytes()).To(Equal(data))
	})

	It("should end a read at the device boundary with EOF", func() {
		buf := make([]byte, 4)

		n, err := env.ctrl.ReadAt(buf, 8190)
		Expect(n).To(Equal(2))
		Expect(err).To(Equal(io.EOF))

		n, err = env.ctrl.ReadAt(buf, 8192)
		Expect(n).To(Equal(0))
		Expect(err).To(Equal(io.EOF))
	})

	It("should reject negative offsets", func() {
		_, err := env.ctrl.ReadAt(make([]byte, 1), -1)
		Expect(err).To(MatchError(ErrInvalidArgument))

		_, err = env.ctrl.WriteAt([]byte{1}, -1)
		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should write at an offset", func() {
		n, err := env.ctrl.WriteAt([]byte{7, 8}, 4000)

		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(2))
		Expect(env.device.Contents(4000, 2)).To(Equal([]byte{7, 8}))
	})

	It("should report writes cut short by the device boundary", func() {
		n, err := env.ctrl.WriteAt([]byte{1, 2, 3}, 8191)
		Expect(n).To(Equal(1))
		Expect(err).To(Equal(io.ErrShortWrite))

		n, err = env.ctrl.WriteAt([]byte{1}, 8192)
		Expect(n).To(Equal(0))
		Expect(err).To(Equal(io.ErrShortWrite))
	})

	It("should report its size", func() {
		Expect(env.ctrl.Size()).To(Equal(int64(8192)))
	})
})
