package queue_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"github.com/Deepanshuguptacode/Crowd-sourced-news-and-fact-checking-platform-sub001/internal/queue"
)

const (
	stream = "opinion_relink_test"
	group  = "opinion_relink_group"
	dlq    = "opinion_relink_dlq_test"
)

var _ = Describe("relink stream", func() {
	var (
		ctx      context.Context
		mr       *miniredis.Miniredis
		client   *redis.Client
		producer queue.Producer
		consumer *queue.RedisConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		client = redis.NewClient(&redis.Options{Addr: mr.Addr()})

		producer = queue.NewRedisProducer(client, stream, nil)
		consumer, err = queue.NewRedisConsumer(ctx, client, queue.ConsumerConfig{
			Stream:    stream,
			Group:     group,
			Consumer:  "test-consumer",
			DLQStream: dlq,
			BatchSize: 10,
			Block:     10 * time.Millisecond,
		})
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		_ = client.Close()
		mr.Close()
	})

	It("tolerates an existing consumer group", func() {
		_, err := queue.NewRedisConsumer(ctx, client, queue.ConsumerConfig{Stream: stream, Group: group})
		Expect(err).NotTo(HaveOccurred())
	})

	It("delivers enqueued jobs with attempt 1", func() {
		trace := "abc123"
		id, err := producer.Enqueue(ctx, queue.RelinkMessage{RoomID: 42, Reason: "manual", TraceID: &trace})
		Expect(err).NotTo(HaveOccurred())
		Expect(id).NotTo(BeEmpty())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))
		Expect(msgs[0].ID).To(Equal(id))
		Expect(msgs[0].TaskType).To(Equal(queue.TaskTypeRelink))
		Expect(msgs[0].RoomID).To(Equal(int64(42)))
		Expect(msgs[0].Reason).To(Equal("manual"))
		Expect(msgs[0].TraceID).To(Equal("abc123"))
		Expect(msgs[0].Attempt).To(Equal(1))

		Expect(consumer.Ack(ctx, msgs[0])).To(Succeed())
		pending, err := client.XPending(ctx, stream, group).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())
	})

	It("returns an empty batch when nothing is waiting", func() {
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())
	})

	It("requeues with the next attempt number", func() {
		_, err := producer.Enqueue(ctx, queue.RelinkMessage{RoomID: 7})
		Expect(err).NotTo(HaveOccurred())
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(consumer.Requeue(ctx, msgs[0], "oracle down")).To(Succeed())

		again, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(again).To(HaveLen(1))
		Expect(again[0].RoomID).To(Equal(int64(7)))
		Expect(again[0].Attempt).To(Equal(2))
		Expect(again[0].Raw.Values).To(HaveKeyWithValue("last_error", "oracle down"))
	})

	It("moves failed jobs to the dead letter stream", func() {
		_, err := producer.Enqueue(ctx, queue.RelinkMessage{RoomID: 9})
		Expect(err).NotTo(HaveOccurred())
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(consumer.SendDLQ(ctx, msgs[0], "gave up")).To(Succeed())

		entries, err := client.XRange(ctx, dlq, "-", "+").Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Values).To(HaveKeyWithValue("error", "gave up"))
		Expect(entries[0].Values).To(HaveKeyWithValue("room_id", "9"))
	})

	It("acks and drops malformed entries", func() {
		Expect(client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: map[string]any{"task_type": "relink_room"}}).Err()).To(Succeed())
		Expect(client.XAdd(ctx, &redis.XAddArgs{Stream: stream, Values: map[string]any{"task_type": "unknown", "room_id": 1}}).Err()).To(Succeed())

		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(BeEmpty())

		pending, err := client.XPending(ctx, stream, group).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())
	})

	It("claims jobs another consumer left unacked once they are stale", func() {
		_, err := producer.Enqueue(ctx, queue.RelinkMessage{RoomID: 12})
		Expect(err).NotTo(HaveOccurred())
		msgs, err := consumer.Read(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(msgs).To(HaveLen(1))

		rescuer, err := queue.NewRedisConsumer(ctx, client, queue.ConsumerConfig{
			Stream: stream, Group: group, Consumer: "rescuer", BatchSize: 10,
		})
		Expect(err).NotTo(HaveOccurred())

		fresh, err := rescuer.ClaimStale(ctx, time.Hour)
		Expect(err).NotTo(HaveOccurred())
		Expect(fresh).To(BeEmpty())

		claimed, err := rescuer.ClaimStale(ctx, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(claimed).To(HaveLen(1))
		Expect(claimed[0].ID).To(Equal(msgs[0].ID))
		Expect(claimed[0].RoomID).To(Equal(int64(12)))

		Expect(rescuer.Ack(ctx, claimed[0])).To(Succeed())
		pending, err := client.XPending(ctx, stream, group).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(pending.Count).To(BeZero())
	})
})
