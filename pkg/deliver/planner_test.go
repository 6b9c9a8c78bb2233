package deliver_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/quip/pkg/deliver"
)

var _ = Describe("BuildPlan", func() {
	const (
		channel = "#linuxgeneration"
		sender  = "alice"
	)

	Describe("direct strategy", func() {
		It("delivers a short multi-line reply to the arrival target", func() {
			reply := strings.Repeat("a", 100) + "\n" +
				strings.Repeat("b", 100) + "\n" +
				strings.Repeat("c", 100)

			plan := deliver.BuildPlan(reply, channel, sender)

			Expect(plan.Strategy).To(Equal(deliver.Direct))
			Expect(plan.Sends).To(HaveLen(3))
			for _, send := range plan.Sends {
				Expect(send.Target).To(Equal(channel))
			}
			Expect(plan.Sends[0].Text).To(Equal(strings.Repeat("a", 100)))
			Expect(plan.Sends[2].Text).To(Equal(strings.Repeat("c", 100)))
		})

		It("splits a single long line into exact chunks without redirecting", func() {
			reply := strings.Repeat("x", 1000)

			plan := deliver.BuildPlan(reply, channel, sender)

			Expect(plan.Strategy).To(Equal(deliver.Direct))
			Expect(plan.Sends).To(HaveLen(2))
			Expect(plan.Sends[0].Text).To(HaveLen(500))
			Expect(plan.Sends[1].Text).To(HaveLen(500))
			Expect(plan.Sends[0].Target).To(Equal(channel))
			Expect(plan.Sends[1].Target).To(Equal(channel))
		})

		It("puts a single trailing atom into its own chunk", func() {
			reply := strings.Repeat("x", deliver.ChunkLimit+1)

			plan := deliver.BuildPlan(reply, channel, sender)

			Expect(plan.Sends).To(HaveLen(2))
			Expect(plan.Sends[0].Text).To(HaveLen(deliver.ChunkLimit))
			Expect(plan.Sends[1].Text).To(Equal("x"))
		})

		It("keeps a line of exactly the limit in one chunk", func() {
			reply := strings.Repeat("x", deliver.ChunkLimit)

			plan := deliver.BuildPlan(reply, channel, sender)

			Expect(plan.Sends).To(HaveLen(1))
			Expect(plan.Sends[0].Text).To(Equal(reply))
		})

		It("counts characters, not bytes", func() {
			// Each rune here is three bytes; 600 of them is one line over
			// the limit in characters, far over it in bytes.
			reply := strings.Repeat("ありがとう", 120)

			plan := deliver.BuildPlan(reply, channel, sender)

			Expect(plan.Sends).To(HaveLen(2))
			Expect([]rune(plan.Sends[0].Text)).To(HaveLen(500))
			Expect([]rune(plan.Sends[1].Text)).To(HaveLen(100))
			Expect(plan.Sends[0].Text + plan.Sends[1].Text).To(Equal(reply))
		})

		It("sends an empty chunk for an empty line", func() {
			plan := deliver.BuildPlan("first\n\nthird", channel, sender)

			Expect(plan.Strategy).To(Equal(deliver.Direct))
			Expect(plan.Sends).To(HaveLen(3))
			Expect(plan.Sends[1].Text).To(Equal(""))
		})
	})

	Describe("redirect strategy", func() {
		sixLines := "1\n2\n3\n4\n5\n6"

		It("routes a long reply to the sender with a notice in the channel", func() {
			plan := deliver.BuildPlan(sixLines, channel, sender)

			Expect(plan.Strategy).To(Equal(deliver.Redirect))
			Expect(plan.Sends).To(HaveLen(7))

			notice := plan.Sends[0]
			Expect(notice.Target).To(Equal(channel))
			Expect(notice.Text).To(ContainSubstring(sender))
			Expect(notice.Text).To(ContainSubstring("send it to just you"))

			for i, send := range plan.Sends[1:] {
				Expect(send.Target).To(Equal(sender))
				Expect(send.Text).To(Equal(sixLines[i*2 : i*2+1]))
			}
		})

		It("sends all lines, not just the first MaxLines", func() {
			plan := deliver.BuildPlan(sixLines, channel, sender)

			texts := make([]string, 0, len(plan.Sends)-1)
			for _, send := range plan.Sends[1:] {
				texts = append(texts, send.Text)
			}
			Expect(texts).To(Equal([]string{"1", "2", "3", "4", "5", "6"}))
		})

		It("skips the notice when the trigger already arrived privately", func() {
			plan := deliver.BuildPlan(sixLines, sender, sender)

			Expect(plan.Strategy).To(Equal(deliver.Redirect))
			Expect(plan.Sends).To(HaveLen(6))
			for _, send := range plan.Sends {
				Expect(send.Target).To(Equal(sender))
			}
		})

		It("chunks each redirected line independently", func() {
			long := strings.Repeat("z", 501)
			reply := strings.Join([]string{"a", "b", "c", "d", long}, "\n")

			plan := deliver.BuildPlan(reply, channel, sender)

			Expect(plan.Strategy).To(Equal(deliver.Redirect))
			// notice + 4 short lines + 2 chunks for the long one
			Expect(plan.Sends).To(HaveLen(7))
			Expect(plan.Sends[5].Text).To(HaveLen(500))
			Expect(plan.Sends[6].Text).To(Equal("z"))
		})
	})

	It("is a pure function of its inputs", func() {
		reply := "one\ntwo\nthree\nfour\nfive\n" + strings.Repeat("y", 777)

		first := deliver.BuildPlan(reply, channel, sender)
		second := deliver.BuildPlan(reply, channel, sender)

		Expect(second).To(Equal(first))
	})

	It("stays on the direct strategy at exactly MaxLines lines", func() {
		plan := deliver.BuildPlan("1\n2\n3\n4", channel, sender)

		Expect(plan.Strategy).To(Equal(deliver.Direct))
		Expect(plan.Sends).To(HaveLen(4))
		Expect(plan.Sends[0].Target).To(Equal(channel))
	})
})
