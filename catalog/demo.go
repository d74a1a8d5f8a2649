package catalog

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/lifecycle/catalog/codec"
	"github.com/viant/lifecycle/catalog/notify"
	"github.com/viant/lifecycle/catalog/product"
	"github.com/viant/lifecycle/catalog/sink"
	"github.com/viant/lifecycle/key"
)

type demoRecord struct {
	User   string `json:"user" cbor:"user"`
	Age    int    `json:"age" cbor:"age"`
	Active bool   `json:"active" cbor:"active"`
}

// Demo walks every catalogue use case writing results to the configured writer
func (c *Catalog) Demo(ctx context.Context) error {
	for _, step := range []func(ctx context.Context) error{
		c.demoProducts,
		c.demoNotifiers,
		c.demoSerializers,
		c.demoCache,
		c.demoSettings,
		c.demoSink,
	} {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(c.options.writer, format, args...)
}

func (c *Catalog) demoProducts(ctx context.Context) error {
	for _, selector := range []key.Key{product.A, product.B} {
		c.printf("Client: does not know the class, but works through the interface:\n")
		result, err := product.NewCreator(c.Products.Registry(), selector).SomeOperation(ctx)
		if err != nil {
			return err
		}
		c.printf("%v\n", result)
	}
	return nil
}

func (c *Catalog) demoNotifiers(ctx context.Context) error {
	for _, item := range []struct {
		selector key.Key
		user     string
		message  string
	}{
		{notify.Email, "alice@example.com", "Your report is ready"},
		{notify.SMS, "+123456789", "Your code is 1234"},
	} {
		notifier, err := c.Notifiers.Get(ctx, item.selector)
		if err != nil {
			return err
		}
		result, err := notifier.Send(ctx, item.user, item.message)
		if err != nil {
			return err
		}
		c.printf("%v\n", result)
	}
	return nil
}

func (c *Catalog) demoSerializers(ctx context.Context) error {
	original := &demoRecord{User: "Alice", Age: 30, Active: true}
	for _, selector := range []key.Key{codec.JSON, codec.CBOR} {
		c.printf("> Using %v\n", selector.Name)
		serializer, err := c.Serializers.Create(ctx, selector)
		if err != nil {
			return err
		}
		data, err := serializer.Serialize(original)
		if err != nil {
			return err
		}
		restored := &demoRecord{}
		if err = serializer.DeserializeInto(data, restored); err != nil {
			return err
		}
		c.printf("Original: %+v\n", *original)
		c.printf("Restored: %+v\n", *restored)
		c.printf("Same: %v\n", reflect.DeepEqual(original, restored))
	}
	return nil
}

func (c *Catalog) demoCache(ctx context.Context) error {
	cache1, err := c.Cache(ctx)
	if err != nil {
		return err
	}
	cache1.Set("foo", "Bar")
	cache2, err := c.Cache(ctx)
	if err != nil {
		return err
	}
	value, _ := cache2.Get("foo")
	c.printf("%v\n", value)
	return nil
}

func (c *Catalog) demoSettings(ctx context.Context) error {
	config1, err := c.Settings(ctx)
	if err != nil {
		return err
	}
	if err = config1.Load(map[string]interface{}{"debug": true, "port": 8000}); err != nil {
		return err
	}
	config2, err := c.Settings(ctx)
	if err != nil {
		return err
	}
	c.printf("%v\n", config2.All())
	return nil
}

func (c *Catalog) demoSink(ctx context.Context) error {
	a, err := c.Sinks.Get(ctx, sink.Stdout)
	if err != nil {
		return err
	}
	b, err := c.Sinks.Get(ctx, sink.Stdout)
	if err != nil {
		return err
	}
	if err = a.Log("First message"); err != nil {
		return err
	}
	return b.Log("Second message")
}
