package presenter_test

import (
	"fmt"
	"strings"

	presenter "github.com/goliatone/go-presenter"
	"github.com/goliatone/go-presenter/pkg/decorator"
	"github.com/goliatone/go-presenter/pkg/model"
	"github.com/goliatone/go-presenter/pkg/testsupport"
)

func Example() {
	presenter.MustDefine("ProductDecorator",
		decorator.Decorates(testsupport.ProductType),
		decorator.Denies("Description"),
		decorator.DecoratesAssociations("store"),
		decorator.Getter("shout", func(d *presenter.Decorator) any {
			return strings.ToUpper(d.Get("name").(string))
		}),
		decorator.Getter("price_label", func(d *presenter.Decorator) any {
			return d.Helpers().Currency(d.Get("price"))
		}),
	)

	presenter.MustDefine("StoreDecorator", decorator.Decorates(testsupport.StoreType))

	dec, err := presenter.Decorate(testsupport.NewProduct(1, "Lamp", 1250))
	if err != nil {
		fmt.Println(err)
		return
	}

	shout, _ := dec.Call("shout")
	_, denied := dec.Call("description")
	fmt.Println(shout)
	fmt.Println(denied)

	data, err := dec.ToJSON(presenter.JSONOptions{
		SerializeOptions: model.SerializeOptions{Only: []string{"id", "name"}},
		DecoratedMethods: []string{"price_label"},
		DecoratedInclude: decorator.IncludeNames("store"),
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(string(data))
	// Output:
	// LAMP
	// decorator: undefined method "description" for ProductDecorator
	// {"id":1,"name":"Lamp","price_label":"$1,250.00","store":{"id":101,"name":"Store Lamp"}}
}
