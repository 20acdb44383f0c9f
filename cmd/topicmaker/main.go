package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/niksmo/refsearch/config"
	"github.com/niksmo/refsearch/internal/adapter"
	"github.com/niksmo/refsearch/pkg/sigctx"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
)

const (
	cleanupPolicy = "delete"
	retention     = 7 * 24 * time.Hour
)

func main() {
	sigCtx, closeApp := sigctx.NotifyContext(context.Background())
	defer closeApp()

	cfg := config.Load()
	if !cfg.Broker.Enabled() {
		fmt.Println("broker is not configured, nothing to do")
		return
	}

	cl := createClient(cfg)
	defer cl.Close()

	topic := cfg.Broker.SearchEventsTopic
	printStart(topic.Name)
	defer printComplete(time.Now())

	err := makeTopic(
		sigCtx, cl, topic.Name, topic.Partitions, topic.ReplicationFactor,
	)
	if err != nil {
		printFail(err)
		os.Exit(1)
	}
}

func createClient(cfg config.Config) *kadm.Client {
	opts := []kgo.Opt{kgo.SeedBrokers(cfg.Broker.SeedBrokers...)}
	if tls := cfg.Broker.TLS; tls.Enabled() {
		tlsConfig, err := adapter.MakeTLSConfig(tls.CA, tls.Cert, tls.Key)
		if err != nil {
			printFail(err)
			os.Exit(1)
		}
		opts = append(opts, kgo.DialTLSConfig(tlsConfig))
	}

	cl, err := kadm.NewOptClient(opts...)
	if err != nil {
		panic(err) // develop mistake
	}
	return cl
}

func makeTopic(
	ctx context.Context,
	cl *kadm.Client,
	topic string,
	partitions int32,
	replicationFactor int16,
) error {
	var (
		policy      = cleanupPolicy
		retentionMS = strconv.FormatInt(retention.Milliseconds(), 10)
		minISR      = "1"
	)

	config := map[string]*string{
		"cleanup.policy":      &policy,
		"retention.ms":        &retentionMS,
		"min.insync.replicas": &minISR,
	}

	responses, err := cl.CreateTopics(
		ctx, partitions, replicationFactor, config, topic,
	)
	if err != nil {
		return err
	}

	var errs []error
	for _, res := range responses.Sorted() {
		err := res.Err
		if err != nil {
			if errors.Is(res.Err, kerr.TopicAlreadyExists) {
				fmt.Printf("topic: %q already exists\n", res.Topic)
			} else {
				errs = append(errs, err)
			}
			continue
		}
		fmt.Printf("topic: %q successfully created\n", res.Topic)
	}

	return errors.Join(errs...)
}

func printStart(topic string) {
	fmt.Printf("initializing topics...\n\t- %q\n\n", topic)
}

func printComplete(start time.Time) {
	fmt.Printf("\ncomplete in %s\n", time.Since(start))
}

func printFail(err error) {
	fmt.Printf("failed to create topics: \n%s\n", err)
}
