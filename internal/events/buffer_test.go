package events

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("buffer", func() {
	It("keeps messages in insertion order", func() {
		buffer := newBuffer()

		buffer.PushBack(&message{Kind: TaskSubmittedKind, Data: []byte("msg1")})
		Expect(buffer.Size()).To(Equal(1))
		Expect(buffer.head).To(BeIdenticalTo(buffer.tail))

		buffer.PushBack(&message{Kind: TaskSucceededKind, Data: []byte("msg2")})
		buffer.PushBack(&message{Kind: TaskFailedKind, Data: []byte("msg3")})
		Expect(buffer.Size()).To(Equal(3))
		Expect(buffer.head.Data).To(Equal([]byte("msg1")))
		Expect(buffer.tail.Data).To(Equal([]byte("msg3")))
	})

	It("pops until empty", func() {
		buffer := newBuffer()
		for _, d := range []string{"msg1", "msg2", "msg3"} {
			buffer.PushBack(&message{Kind: TaskSubmittedKind, Data: []byte(d)})
		}

		for i, d := range []string{"msg1", "msg2", "msg3"} {
			m := buffer.Pop()
			Expect(m).NotTo(BeNil())
			Expect(m.Data).To(Equal([]byte(d)))
			Expect(buffer.Size()).To(Equal(2 - i))
		}
		Expect(buffer.head).To(BeNil())
		Expect(buffer.tail).To(BeNil())
		Expect(buffer.Pop()).To(BeNil())
	})
})
