package id_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/common/id"
)

var _ = Describe("New", func() {
	It("generates strictly increasing ids", func() {
		prev := id.New()
		for range 100 {
			next := id.New()
			Expect(next).To(BeNumerically(">", prev))
			prev = next
		}
	})
})

var _ = Describe("Parse", func() {
	DescribeTable("parses path ids",
		func(raw string, expected int64, wantErr bool) {
			v, err := id.Parse(raw)
			if wantErr {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(v).To(Equal(expected))
		},
		Entry("valid", "1234567890", int64(1234567890), false),
		Entry("zero", "0", int64(0), true),
		Entry("negative", "-5", int64(0), true),
		Entry("not a number", "abc", int64(0), true),
		Entry("empty", "", int64(0), true),
	)
})
