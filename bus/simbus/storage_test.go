package simbus

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Storage", func() {
	It("should read erased cells before any write", func() {
		storage := NewStorage(64, 32)

		res, err := storage.Read(10, 3)

		Expect(err).NotTo(HaveOccurred())
		Expect(res).To(Equal([]byte{0xff, 0xff, 0xff}))
	})

	It("should read and write in single unit", func() {
		storage := NewStorage(64, 32)
		Expect(storage.Write(0, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(0, 2)
		Expect(res).To(Equal([]byte{1, 2}))

		res, _ = storage.Read(1, 2)
		Expect(res).To(Equal([]byte{2, 3}))
	})

	It("should read and write across units", func() {
		storage := NewStorage(64, 32)
		Expect(storage.Write(30, []byte{1, 2, 3, 4})).To(Succeed())

		res, _ := storage.Read(29, 6)
		Expect(res).To(Equal([]byte{0xff, 1, 2, 3, 4, 0xff}))
	})

	It("should return error if accessing over the capacity", func() {
		storage := NewStorage(64, 32)

		err := storage.Write(63, []byte{1, 2})
		Expect(err).To(MatchError("accessing address beyond the storage capacity"))

		_, err = storage.Read(64, 1)
		Expect(err).To(MatchError("accessing address beyond the storage capacity"))
	})

	It("should load a short image and save the whole array", func() {
		storage := NewStorage(64, 32)

		Expect(storage.Load(bytes.NewReader([]byte{9, 8, 7}))).To(Succeed())

		out := &bytes.Buffer{}
		Expect(storage.Save(out)).To(Succeed())
		Expect(out.Len()).To(Equal(64))
		Expect(out.Bytes()[:4]).To(Equal([]byte{9, 8, 7, 0xff}))
	})

	It("should panic if the unit size does not divide the capacity", func() {
		Expect(func() { NewStorage(100, 32) }).To(Panic())
	})
})
