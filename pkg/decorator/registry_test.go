package decorator_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/model"
	"github.com/goliatone/go-presenter/pkg/testsupport"
)

func TestRegisterConventionalName(t *testing.T) {
	reg := decorator.NewRegistry()
	def := defineProduct(t, reg)

	first, err := reg.Resolve(testsupport.ProductType, decorator.DefaultVersion)
	require.NoError(t, err)
	second, err := reg.Resolve(testsupport.ProductType, "")
	require.NoError(t, err)

	require.Same(t, def, first)
	require.Same(t, first, second)
	require.Same(t, testsupport.ProductType, def.ModelType())
}

func TestRegisterNonConventionalNameRequiresVersion(t *testing.T) {
	reg := decorator.NewRegistry()

	_, err := decorator.Define("FancyProductPresenter",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ProductType),
	)
	var cfgErr *decorator.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "version required for non-conventional naming", cfgErr.Reason)
	require.False(t, reg.Decoratable(testsupport.ProductType))

	def, err := decorator.Define("FancyProductPresenter",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ProductType),
		decorator.ForVersion("fancy"),
	)
	require.NoError(t, err)

	resolved, err := reg.Resolve(testsupport.ProductType, "fancy")
	require.NoError(t, err)
	require.Same(t, def, resolved)

	_, err = reg.Resolve(testsupport.ProductType, decorator.DefaultVersion)
	var resErr *decorator.ResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestVersionWithoutModelType(t *testing.T) {
	_, err := decorator.Define("ApiDecorator", decorator.WithRegistry(decorator.NewRegistry()), decorator.ForVersion("api"))
	var cfgErr *decorator.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestResolveVersionFallsBackToDefault(t *testing.T) {
	reg := decorator.NewRegistry()
	def := defineProduct(t, reg)
	api, err := decorator.Define("ProductAPIDecorator",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ProductType),
		decorator.ForVersion("api"),
	)
	require.NoError(t, err)

	got, err := reg.Resolve(testsupport.ProductType, "api")
	require.NoError(t, err)
	require.Same(t, api, got)

	got, err = reg.Resolve(testsupport.ProductType, "web")
	require.NoError(t, err)
	require.Same(t, def, got)

	again, err := reg.Resolve(testsupport.ProductType, "web")
	require.NoError(t, err)
	require.Same(t, got, again)
}

func TestResolveWalksAncestors(t *testing.T) {
	reg := decorator.NewRegistry()
	productDef := defineProduct(t, reg)

	got, err := reg.Resolve(testsupport.WidgetType, decorator.DefaultVersion)
	require.NoError(t, err)
	require.Same(t, productDef, got)

	widgetDef, err := decorator.Define("WidgetDecorator",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.WidgetType),
	)
	require.NoError(t, err)

	got, err = reg.Resolve(testsupport.WidgetType, decorator.DefaultVersion)
	require.NoError(t, err)
	require.Same(t, widgetDef, got)
}

func TestResolveVersionOnAncestorBeforeDefaultOnAncestor(t *testing.T) {
	reg := decorator.NewRegistry()
	defineProduct(t, reg)
	api, err := decorator.Define("ProductAPIDecorator",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ProductType),
		decorator.ForVersion("api"),
	)
	require.NoError(t, err)

	got, err := reg.Resolve(testsupport.WidgetType, "api")
	require.NoError(t, err)
	require.Same(t, api, got)
}

func TestResolveFailsAtRoot(t *testing.T) {
	reg := decorator.NewRegistry()

	_, err := reg.Resolve(testsupport.StoreType, "api")
	var resErr *decorator.ResolutionError
	require.ErrorAs(t, err, &resErr)
	require.Equal(t, "Store", resErr.Model)
	require.Equal(t, "api", resErr.Version)

	_, err = reg.Decorate(&testsupport.Store{ID: 1})
	require.ErrorAs(t, err, &resErr)
}

func TestRegisterRejectsDuplicateVersion(t *testing.T) {
	reg := decorator.NewRegistry()
	defineProduct(t, reg)

	_, err := decorator.Define("ProductDecorator",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ProductType),
	)
	var cfgErr *decorator.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
}

func TestDecorateCachesPerOptionSet(t *testing.T) {
	reg := decorator.NewRegistry()
	defineProduct(t, reg)
	product := testsupport.NewProduct(1, "Lamp", 12.5)

	first, err := reg.Decorate(product, decorator.WithContext(decorator.Context{"a": 1, "b": 2}))
	require.NoError(t, err)
	second, err := reg.Decorate(product, decorator.WithContextValue("b", 2), decorator.WithContextValue("a", 1))
	require.NoError(t, err)
	require.Same(t, first, second)

	other, err := reg.Decorate(product, decorator.WithContext(decorator.Context{"a": 2}))
	require.NoError(t, err)
	require.NotSame(t, first, other)

	versioned, err := reg.Decorate(product, decorator.WithContext(decorator.Context{"a": 1, "b": 2}), decorator.WithVersion("api"))
	require.NoError(t, err)
	require.NotSame(t, first, versioned)
	require.Equal(t, 3, product.DecorationCache().Len())
}

func TestDecorateWithoutCacheBuildsFreshPresenters(t *testing.T) {
	reg := decorator.NewRegistry()
	_, err := decorator.Define("ReviewDecorator",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ReviewType),
	)
	require.NoError(t, err)
	review := &testsupport.Review{ID: 1}

	first, err := reg.Decorate(review)
	require.NoError(t, err)
	second, err := reg.Decorate(review)
	require.NoError(t, err)
	require.NotSame(t, first, second)
	require.True(t, first.Equal(second))
}

type recordingObserver struct {
	mu         sync.Mutex
	resolved   []string
	fallbacks  int
	unresolved []string
	hits       int
	decorated  int
}

func (o *recordingObserver) Resolved(modelName, version, decoratorName string, fallback bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.resolved = append(o.resolved, modelName+"/"+version+"="+decoratorName)
	if fallback {
		o.fallbacks++
	}
}

func (o *recordingObserver) Unresolved(modelName, version string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unresolved = append(o.unresolved, modelName+"/"+version)
}

func (o *recordingObserver) CacheHit(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *recordingObserver) Decorated(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.decorated++
}

func TestRegistryObserver(t *testing.T) {
	observer := &recordingObserver{}
	reg := decorator.NewRegistry(decorator.WithObserver(observer))
	defineProduct(t, reg)
	widget := &testsupport.Widget{Product: testsupport.Product{ID: 9, Name: "Gear"}}

	_, err := reg.Decorate(widget)
	require.NoError(t, err)
	_, err = reg.Decorate(widget)
	require.NoError(t, err)
	_, err = reg.Decorate(&testsupport.Store{ID: 1})
	require.Error(t, err)

	require.Equal(t, []string{"Widget/default=ProductDecorator", "Widget/default=ProductDecorator"}, observer.resolved)
	require.Equal(t, 2, observer.fallbacks)
	require.Equal(t, []string{"Store/default"}, observer.unresolved)
	require.Equal(t, 1, observer.hits)
	require.Equal(t, 1, observer.decorated)
}

func TestRegistryLogsRegistrations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	reg := decorator.NewRegistry(decorator.WithLogger(logger))
	defineProduct(t, reg)

	require.Contains(t, buf.String(), "decorator registered")
	require.Contains(t, buf.String(), "decorator=ProductDecorator")
}

func TestRegistrationsSnapshot(t *testing.T) {
	reg := decorator.NewRegistry()
	defineProduct(t, reg)
	_, err := decorator.Define("StoreDecorator", decorator.WithRegistry(reg), decorator.Decorates(testsupport.StoreType))
	require.NoError(t, err)
	_, err = decorator.Define("ProductAPIDecorator",
		decorator.WithRegistry(reg),
		decorator.Decorates(testsupport.ProductType),
		decorator.ForVersion("api"),
	)
	require.NoError(t, err)

	var got []string
	for _, entry := range reg.Registrations() {
		got = append(got, entry.Model.Name()+"/"+entry.Version+"="+entry.Definition.Name())
	}
	require.Equal(t, []string{
		"Product/api=ProductAPIDecorator",
		"Product/default=ProductDecorator",
		"Store/default=StoreDecorator",
	}, got)
	require.True(t, reg.Decoratable(testsupport.WidgetType))
	require.False(t, reg.Decoratable(testsupport.ReviewType))
}

func TestDecorateAllUsesFinder(t *testing.T) {
	reg := decorator.NewRegistry()
	def := defineProduct(t, reg)

	collection, err := reg.DecorateAll(testsupport.ProductType, decorator.WithContextValue("page", 1))
	require.NoError(t, err)
	require.Equal(t, 3, collection.Len())
	require.Same(t, def, collection.Definition())

	_, err = reg.DecorateAll(testsupport.StoreType)
	var resErr *decorator.ResolutionError
	require.ErrorAs(t, err, &resErr)
}

func TestDefinitionTypeLevelAccess(t *testing.T) {
	reg := decorator.NewRegistry()
	def := defineProduct(t, reg)

	found, err := def.Find(2, decorator.WithVersion("api"))
	require.NoError(t, err)
	require.Equal(t, "Desk", found.Get("name"))
	require.Equal(t, "api", found.Version())

	first, err := def.First()
	require.NoError(t, err)
	require.Equal(t, 1, first.Get("id"))

	last, err := def.Last()
	require.NoError(t, err)
	require.Equal(t, 3, last.Get("id"))

	all, err := def.All()
	require.NoError(t, err)
	require.Equal(t, 3, all.Len())

	count, err := def.CallType("count")
	require.NoError(t, err)
	require.Equal(t, 3, count)

	_, err = def.Find(99)
	require.True(t, errors.Is(err, model.ErrNotFound))

	unbound, err := decorator.Define("LooseDecorator", decorator.WithRegistry(reg))
	require.NoError(t, err)
	_, err = unbound.CallType("count")
	require.Error(t, err)
}

func TestDefinitionDecorate(t *testing.T) {
	reg := decorator.NewRegistry()
	def := defineProduct(t, reg)
	product := testsupport.NewProduct(1, "Lamp", 12.5)

	single, err := def.Decorate(product)
	require.NoError(t, err)
	dec, ok := single.(*decorator.Decorator)
	require.True(t, ok)

	again, err := def.Decorate(product)
	require.NoError(t, err)
	require.Same(t, dec, again)

	rewrapped, err := def.Decorate(dec)
	require.NoError(t, err)
	require.Same(t, product, rewrapped.(*decorator.Decorator).Model())

	many, err := def.Decorate(testsupport.SeedProducts())
	require.NoError(t, err)
	collection, ok := many.(*decorator.Collection)
	require.True(t, ok)
	require.Equal(t, 3, collection.Len())
}

func TestDefinitionBindsModelTypeOnFirstUse(t *testing.T) {
	reg := decorator.NewRegistry()
	def, err := decorator.Define("FreeformDecorator", decorator.WithRegistry(reg))
	require.NoError(t, err)
	require.Nil(t, def.ModelType())

	_, err = decorator.New(def, &testsupport.Store{ID: 1})
	require.NoError(t, err)
	require.Same(t, testsupport.StoreType, def.ModelType())
}
