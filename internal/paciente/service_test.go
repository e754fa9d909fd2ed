package paciente_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	"github.com/frahmantamala/vaccination-registry/internal/catalog"
	catalogPostgres "github.com/frahmantamala/vaccination-registry/internal/catalog/postgres"
	"github.com/frahmantamala/vaccination-registry/internal/core/access"
	registroDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/registro"
	"github.com/frahmantamala/vaccination-registry/internal/core/storetest"
	"github.com/frahmantamala/vaccination-registry/internal/paciente"
	pacientePostgres "github.com/frahmantamala/vaccination-registry/internal/paciente/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func TestPaciente(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Paciente Suite")
}

var _ = Describe("Paciente Service", func() {
	var (
		ctx      context.Context
		db       *gorm.DB
		catalogs *catalog.Service
		service  *paciente.Service
		caller   *access.Principal
		stranger *access.Principal
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = storetest.MustOpen()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		catalogs = catalog.NewService(catalogPostgres.NewCatalogRepository(db), logger)
		service = paciente.NewService(pacientePostgres.NewPacienteRepository(db), catalogs, logger)

		caller = &access.Principal{UserID: 1, EmpresaID: 1, Username: "enfermera"}
		stranger = &access.Principal{UserID: 2, EmpresaID: 2, Username: "otra"}
	})

	dto := func(numero string) paciente.PacienteDTO {
		return paciente.PacienteDTO{
			TipoIdentificacion:   "CC",
			NumeroIdentificacion: numero,
			PrimerNombre:         "Ana",
			PrimerApellido:       "Gomez",
			FechaNacimiento:      "1990-05-17",
			Sexo:                 "F",
		}
	}

	create := func(p *access.Principal, numero string) *paciente.Paciente {
		out, err := service.Create(ctx, p, dto(numero))
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	Describe("Create", func() {
		It("stores the paciente in the caller's tenant", func() {
			out := create(caller, "1001")
			Expect(out.ID).To(BeNumerically(">", 0))
			Expect(out.FechaNacimiento).To(Equal("1990-05-17"))
			Expect(out.NombreCompleto()).To(Equal("Ana Gomez"))

			var row registroDatamodel.Paciente
			Expect(db.First(&row, out.ID).Error).NotTo(HaveOccurred())
			Expect(row.EmpresaID).To(Equal(int64(1)))
		})

		It("rejects a duplicate identificacion within the tenant", func() {
			create(caller, "1001")
			_, err := service.Create(ctx, caller, dto("1001"))
			Expect(err).To(MatchError(paciente.ErrDuplicateIdentificacion))
		})

		It("accepts the same identificacion in another tenant", func() {
			create(caller, "1001")
			create(stranger, "1001")
		})

		It("rejects a birth date in the future", func() {
			d := dto("1001")
			d.FechaNacimiento = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
			_, err := service.Create(ctx, caller, d)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects an unknown tipo_identificacion", func() {
			d := dto("1001")
			d.TipoIdentificacion = "XX"
			_, err := service.Create(ctx, caller, d)
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})

		It("rejects a catalog entry of another tenant", func() {
			eps, err := catalogs.Create(ctx, stranger.EmpresaID, catalog.KindAseguradora, catalog.CreateEntryDTO{Codigo: "EPS", Nombre: "EPS"})
			Expect(err).NotTo(HaveOccurred())

			d := dto("1001")
			d.AseguradoraID = &eps.ID
			_, err = service.Create(ctx, caller, d)
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())
		})

		It("accepts a catalog entry of its own tenant", func() {
			eps, err := catalogs.Create(ctx, caller.EmpresaID, catalog.KindAseguradora, catalog.CreateEntryDTO{Codigo: "EPS", Nombre: "EPS"})
			Expect(err).NotTo(HaveOccurred())

			d := dto("1001")
			d.AseguradoraID = &eps.ID
			out, err := service.Create(ctx, caller, d)
			Expect(err).NotTo(HaveOccurred())
			Expect(*out.AseguradoraID).To(Equal(eps.ID))
		})
	})

	Describe("tenant isolation", func() {
		It("hides a paciente from another tenant", func() {
			out := create(caller, "1001")

			_, err := service.Get(ctx, stranger, out.ID)
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())

			_, err = service.Update(ctx, stranger, out.ID, dto("1001"))
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())

			err = service.Delete(ctx, stranger, out.ID)
			Expect(internal.IsType(err, internal.ErrorTypeTenantMismatch)).To(BeTrue())
		})

		It("lists only the caller's pacientes", func() {
			create(caller, "1001")
			create(caller, "1002")
			create(stranger, "2001")

			list, total, err := service.List(ctx, caller, paciente.ListFilter{Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(2)))
			Expect(list).To(HaveLen(2))
		})

		It("filters by search text", func() {
			create(caller, "1001")
			create(caller, "5005")

			list, total, err := service.List(ctx, caller, paciente.ListFilter{Search: "500", Limit: 10})
			Expect(err).NotTo(HaveOccurred())
			Expect(total).To(Equal(int64(1)))
			Expect(list[0].NumeroIdentificacion).To(Equal("5005"))
		})
	})

	Describe("Update", func() {
		It("refuses to take another paciente's identificacion", func() {
			create(caller, "1001")
			b := create(caller, "1002")

			_, err := service.Update(ctx, caller, b.ID, dto("1001"))
			Expect(err).To(MatchError(paciente.ErrDuplicateIdentificacion))
		})

		It("updates fields", func() {
			out := create(caller, "1001")
			d := dto("1001")
			d.Telefono = "3001234567"

			updated, err := service.Update(ctx, caller, out.ID, d)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Telefono).To(Equal("3001234567"))
		})
	})

	Describe("Delete", func() {
		It("refuses while vaccination records exist", func() {
			out := create(caller, "1001")
			Expect(db.Create(&registroDatamodel.RegistroVacunacion{
				EmpresaID: 1, PacienteID: out.ID, FechaAtencion: time.Now(),
			}).Error).NotTo(HaveOccurred())

			err := service.Delete(ctx, caller, out.ID)
			Expect(err).To(MatchError(paciente.ErrPacienteHasRegistros))
			Expect(internal.Public(err).StatusCode).To(Equal(409))
		})

		It("cascades antecedentes", func() {
			out := create(caller, "1001")
			_, err := service.AddAntecedente(ctx, caller, out.ID, paciente.CreateAntecedenteDTO{Tipo: "alergico", Descripcion: "Penicilina"})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, caller, out.ID)).To(Succeed())

			var n int64
			Expect(db.Model(&registroDatamodel.AntecedenteMedico{}).Count(&n).Error).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
			_, err = service.Get(ctx, caller, out.ID)
			Expect(err).To(MatchError(paciente.ErrPacienteNotFound))
		})
	})

	Describe("Antecedentes", func() {
		It("adds, lists and deletes", func() {
			out := create(caller, "1001")
			a, err := service.AddAntecedente(ctx, caller, out.ID, paciente.CreateAntecedenteDTO{
				Tipo: "patologico", Descripcion: "Asma", FechaDiagnostico: "2010-03-01",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(a.FechaDiagnostico).To(Equal("2010-03-01"))

			list, err := service.ListAntecedentes(ctx, caller, out.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))

			Expect(service.DeleteAntecedente(ctx, caller, out.ID, a.ID)).To(Succeed())
			list, err = service.ListAntecedentes(ctx, caller, out.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(BeEmpty())
		})

		It("does not delete an antecedente through another paciente", func() {
			a1 := create(caller, "1001")
			a2 := create(caller, "1002")
			ant, err := service.AddAntecedente(ctx, caller, a1.ID, paciente.CreateAntecedenteDTO{Tipo: "otro", Descripcion: "x"})
			Expect(err).NotTo(HaveOccurred())

			err = service.DeleteAntecedente(ctx, caller, a2.ID, ant.ID)
			Expect(err).To(MatchError(paciente.ErrAntecedenteNotFound))
		})

		It("hides antecedentes from other tenants", func() {
			out := create(caller, "1001")
			_, err := service.ListAntecedentes(ctx, stranger, out.ID)
			Expect(internal.Public(err).Type).To(Equal(internal.ErrorTypeNotFound))
		})
	})
})
