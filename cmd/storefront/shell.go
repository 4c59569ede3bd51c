package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/tiendaonline/storefront/internal/checkout"
	"github.com/tiendaonline/storefront/internal/storefront"
)

const help = `Comandos:
  productos [categoria]     lista los productos (todas por defecto)
  categorias                lista las categorías
  ver <id>                  detalle de un producto
  agregar <id> [cantidad]   agrega al carrito
  carrito                   muestra el carrito
  cantidad <id> <n>         fija la cantidad (0 elimina)
  mas <id> | menos <id>     suma o resta una unidad
  quitar <id>               elimina la línea
  vaciar                    vacía el carrito
  checkout                  abre el formulario de pedido
  campo <nombre> <valor>    nombre, email, telefono, direccion, ciudad, codigoPostal
  confirmar                 envía el pedido
  volver                    vuelve a la tienda
  salir`

type shell struct {
	sess *storefront.Session
	out  io.Writer
}

func newShell(sess *storefront.Session, out io.Writer) *shell {
	return &shell{sess: sess, out: out}
}

// Run reads commands line by line until EOF, "salir" or ctx is done.
func (s *shell) Run(ctx context.Context, in io.Reader) {
	if err := s.sess.Catalog().Err(); err != nil {
		s.printf("Error al cargar los productos: %v\n", err)
	}
	s.printf("Tienda Online. Escribe \"ayuda\" para ver los comandos.\n")
	s.prompt()

	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		if !s.exec(ctx, strings.Fields(sc.Text())) {
			return
		}
		if msg := s.sess.TakeFlash(); msg != "" {
			s.printf("%s\n", msg)
		}
		s.prompt()
	}
}

func (s *shell) printf(format string, args ...any) { fmt.Fprintf(s.out, format, args...) }

func (s *shell) prompt() {
	s.printf("[%s | carrito: %d] > ", s.sess.View(), s.sess.Badge())
}

func (s *shell) exec(ctx context.Context, args []string) bool {
	if len(args) == 0 {
		return true
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ayuda", "help":
		s.printf("%s\n", help)
	case "salir", "exit":
		return false
	case "productos":
		if len(rest) > 0 {
			s.sess.SelectCategory(rest[0])
		}
		s.sess.ShowProducts()
		s.listProducts()
	case "categorias":
		s.printf("%s\n", strings.Join(s.sess.Catalog().Categories(), ", "))
	case "ver":
		s.withID(rest, s.showProduct)
	case "agregar":
		s.withID(rest, func(id int64) {
			qty := 1
			if len(rest) > 1 {
				n, err := strconv.Atoi(rest[1])
				if err != nil || n < 1 {
					s.printf("Cantidad inválida\n")
					return
				}
				qty = n
			}
			if err := s.sess.AddToCart(id, qty); err != nil {
				s.printf("No se pudo agregar: %v\n", err)
				return
			}
			s.printf("Agregado al carrito\n")
		})
	case "carrito":
		s.sess.ShowCart()
		s.showCart()
	case "cantidad":
		if len(rest) < 2 {
			s.printf("Uso: cantidad <id> <n>\n")
			return true
		}
		s.withID(rest, func(id int64) {
			n, err := strconv.Atoi(rest[1])
			if err != nil {
				s.printf("Cantidad inválida\n")
				return
			}
			s.sess.Cart().SetQuantity(id, n)
			s.showCart()
		})
	case "mas", "menos":
		delta := 1
		if cmd == "menos" {
			delta = -1
		}
		s.withID(rest, func(id int64) {
			s.sess.Cart().Step(id, delta)
			s.showCart()
		})
	case "quitar":
		s.withID(rest, func(id int64) {
			s.sess.Cart().Remove(id)
			s.showCart()
		})
	case "vaciar":
		s.sess.Cart().Clear()
		s.showCart()
	case "checkout":
		s.showCheckout(s.sess.OpenCheckout())
	case "campo":
		s.setField(rest)
	case "confirmar":
		s.submit(ctx)
	case "volver":
		s.sess.ShowProducts()
	default:
		s.printf("Comando desconocido: %s (escribe \"ayuda\")\n", cmd)
	}
	return true
}

func (s *shell) withID(args []string, fn func(int64)) {
	if len(args) == 0 {
		s.printf("Falta el id del producto\n")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		s.printf("ID inválido: %s\n", args[0])
		return
	}
	fn(id)
}

func (s *shell) listProducts() {
	ps := s.sess.Products()
	if len(ps) == 0 {
		s.printf("No hay productos disponibles\n")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCTO\tCATEGORÍA\tPRECIO\tSTOCK")
	for _, p := range ps {
		stock := strconv.Itoa(p.Stock)
		if !p.InStock() {
			stock = "Sin stock"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t%s\n", p.ID, p.Name, p.Category, p.Price.StringFixed(2), stock)
	}
	_ = tw.Flush()
}

func (s *shell) showProduct(id int64) {
	p, ok := s.sess.Catalog().Find(id)
	if !ok {
		s.printf("Producto no encontrado\n")
		return
	}
	s.printf("%s (%s)\n%s\nPrecio: $%s\n", p.Name, p.Category, p.Description, p.Price.StringFixed(2))
	if p.InStock() {
		s.printf("En stock (%d disponibles)\n", p.Stock)
	} else {
		s.printf("Sin stock\n")
	}
}

func (s *shell) showCart() {
	lines := s.sess.Cart().Lines()
	if len(lines) == 0 {
		s.printf("Tu carrito está vacío\n")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCTO\tPRECIO\tCANTIDAD\tSUBTOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%d\t$%s\n", l.ProductID, l.Name, l.Price.StringFixed(2), l.Qty, l.Subtotal().StringFixed(2))
	}
	_ = tw.Flush()
	s.printSummary()
}

func (s *shell) printSummary() {
	sum := s.sess.CartSummary()
	s.printf("Subtotal (%d productos): $%s\n", sum.Items, sum.Subtotal.StringFixed(2))
	if sum.FreeShipping() {
		s.printf("Envío: Gratis\n")
	} else {
		s.printf("Envío: $%s\n", sum.Shipping.StringFixed(2))
	}
	s.printf("Total: $%s\n", sum.Total.StringFixed(2))
	if notice := sum.FreeShippingNotice(); notice != "" {
		s.printf("%s\n", notice)
	}
}

func (s *shell) showCheckout(p *checkout.Pipeline) {
	if p.State() == checkout.StateEmpty {
		s.printf("No hay productos en el carrito\n")
		return
	}
	form := p.Form()
	errs := p.Errors()
	for _, f := range checkout.Fields {
		s.printf("  %-13s %s", f.String()+":", form.Get(f))
		if msg, ok := errs[f]; ok {
			s.printf("  <- %s", msg)
		}
		s.printf("\n")
	}
	s.printSummary()
	if n := p.Notice(); n != "" {
		s.printf("%s\n", n)
	}
}

func (s *shell) setField(args []string) {
	p := s.sess.Checkout()
	if p == nil || s.sess.View() != storefront.ViewCheckout {
		s.printf("Abre el checkout primero\n")
		return
	}
	if len(args) == 0 {
		s.printf("Uso: campo <nombre> <valor>\n")
		return
	}
	f, ok := checkout.ParseField(args[0])
	if !ok {
		s.printf("Campo desconocido: %s\n", args[0])
		return
	}
	if err := p.Set(f, strings.Join(args[1:], " ")); err != nil {
		s.printf("%v\n", err)
	}
}

func (s *shell) submit(ctx context.Context) {
	if s.sess.View() != storefront.ViewCheckout {
		s.printf("Abre el checkout primero\n")
		return
	}
	s.printf("Procesando...\n")
	_, err := s.sess.SubmitCheckout(ctx)
	var fe checkout.FieldErrors
	switch {
	case err == nil:
	case errors.As(err, &fe):
		s.printf("Revisa los datos del formulario:\n")
		s.showCheckout(s.sess.Checkout())
	case errors.Is(err, checkout.ErrOrderFailed):
		s.printf("%s\n", checkout.FailureNotice)
	default:
		s.printf("%v\n", err)
	}
}
